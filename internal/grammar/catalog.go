package grammar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

const (
	searchConfigFile = "config.json"
	catalogFile      = "parsers.json"
	parsersDirName   = "parsers"
)

// Catalog lists known grammar source repositories. It is persisted as
// parsers.json in the grammar configuration directory.
type Catalog struct {
	Parsers []string `json:"parsers"`
}

// DefaultCatalog returns the built-in list of grammar repositories from
// https://tree-sitter.github.io/tree-sitter/#parsers.
func DefaultCatalog() Catalog {
	return Catalog{
		Parsers: []string{
			"https://github.com/briot/tree-sitter-ada",
			"https://github.com/tree-sitter/tree-sitter-agda",
			"https://github.com/aheber/tree-sitter-sfapex",
			"https://github.com/tree-sitter/tree-sitter-bash",
			"https://github.com/zwpaper/tree-sitter-beancount",
			"https://github.com/amaanq/tree-sitter-capnp",
			"https://github.com/tree-sitter/tree-sitter-c",
			"https://github.com/tree-sitter/tree-sitter-cpp",
			"https://github.com/tree-sitter/tree-sitter-c-sharp",
			"https://github.com/sogaiu/tree-sitter-clojure",
			"https://github.com/uyha/tree-sitter-cmake",
			"https://github.com/stsewd/tree-sitter-comment",
			"https://github.com/theHamsta/tree-sitter-commonlisp",
			"https://github.com/tree-sitter/tree-sitter-css",
			"https://github.com/theHamsta/tree-sitter-cuda",
			"https://github.com/UserNobody14/tree-sitter-dart",
			"https://github.com/gdamore/tree-sitter-d",
			"https://github.com/camdencheek/tree-sitter-dockerfile",
			"https://github.com/rydesun/tree-sitter-dot",
			"https://github.com/elixir-lang/tree-sitter-elixir",
			"https://github.com/elm-tooling/tree-sitter-elm",
			"https://github.com/Wilfred/tree-sitter-elisp",
			"https://github.com/eno-lang/tree-sitter-eno",
			"https://github.com/tree-sitter/tree-sitter-embedded-template",
			"https://github.com/WhatsApp/tree-sitter-erlang/",
			"https://github.com/travonted/tree-sitter-fennel",
			"https://github.com/ram02z/tree-sitter-fish",
			"https://github.com/siraben/tree-sitter-formula",
			"https://github.com/stadelmanma/tree-sitter-fortran",
			"https://github.com/ObserverOfTime/tree-sitter-gitattributes",
			"https://github.com/shunsambongi/tree-sitter-gitignore",
			"https://github.com/gleam-lang/tree-sitter-gleam",
			"https://github.com/theHamsta/tree-sitter-glsl",
			"https://github.com/tree-sitter/tree-sitter-go",
			"https://github.com/camdencheek/tree-sitter-go-mod",
			"https://github.com/omertuc/tree-sitter-go-work",
			"https://github.com/bkegley/tree-sitter-graphql",
			"https://github.com/slackhq/tree-sitter-hack",
			"https://github.com/tree-sitter/tree-sitter-haskell",
			"https://github.com/MichaHoffmann/tree-sitter-hcl",
			"https://github.com/tree-sitter/tree-sitter-html",
			"https://github.com/tree-sitter/tree-sitter-java",
			"https://github.com/tree-sitter/tree-sitter-javascript",
			"https://github.com/flurie/tree-sitter-jq",
			"https://github.com/Joakker/tree-sitter-json5",
			"https://github.com/tree-sitter/tree-sitter-json",
			"https://github.com/tree-sitter/tree-sitter-julia",
			"https://github.com/fwcd/tree-sitter-kotlin",
			"https://github.com/traxys/tree-sitter-lalrpop",
			"https://github.com/latex-lsp/tree-sitter-latex",
			"https://github.com/Julian/tree-sitter-lean",
			"https://github.com/benwilliamgraham/tree-sitter-llvm",
			"https://github.com/Flakebi/tree-sitter-llvm-mir",
			"https://github.com/Flakebi/tree-sitter-tablegen",
			"https://github.com/Azganoth/tree-sitter-lua",
			"https://github.com/alemuller/tree-sitter-make",
			"https://github.com/ikatyang/tree-sitter-markdown",
			"https://github.com/MDeiml/tree-sitter-markdown",
			"https://github.com/Decodetalkers/tree-sitter-meson",
			"https://github.com/staysail/tree-sitter-meson",
			"https://github.com/grahambates/tree-sitter-m68k",
			"https://github.com/cstrahan/tree-sitter-nix",
			"https://github.com/jiyee/tree-sitter-objc",
			"https://github.com/tree-sitter/tree-sitter-ocaml",
			"https://github.com/milisims/tree-sitter-org",
			"https://github.com/Isopod/tree-sitter-pascal",
			"https://github.com/ganezdragon/tree-sitter-perl",
			"https://github.com/tree-sitter-perl/tree-sitter-perl",
			"https://github.com/tree-sitter-perl/tree-sitter-pod",
			"https://github.com/tree-sitter/tree-sitter-php",
			"https://github.com/rolandwalker/tree-sitter-pgn",
			"https://github.com/PowerShell/tree-sitter-PowerShell",
			"https://github.com/mitchellh/tree-sitter-proto",
			"https://github.com/tree-sitter/tree-sitter-python",
			"https://github.com/yuja/tree-sitter-qmljs",
			"https://github.com/6cdh/tree-sitter-racket",
			"https://github.com/Fymyte/tree-sitter-rasi",
			"https://github.com/alemuller/tree-sitter-re2c",
			"https://github.com/tree-sitter/tree-sitter-regex",
			"https://github.com/FallenAngel97/tree-sitter-rego",
			"https://github.com/stsewd/tree-sitter-rst",
			"https://github.com/r-lib/tree-sitter-r",
			"https://github.com/tree-sitter/tree-sitter-ruby",
			"https://github.com/tree-sitter/tree-sitter-rust",
			"https://github.com/tree-sitter/tree-sitter-scala",
			"https://github.com/6cdh/tree-sitter-scheme",
			"https://github.com/serenadeai/tree-sitter-scss",
			"https://github.com/AbstractMachinesLab/tree-sitter-sexp",
			"https://github.com/amaanq/tree-sitter-smali",
			"https://github.com/nilshelmig/tree-sitter-sourcepawn",
			"https://github.com/BonaBeavis/tree-sitter-sparql",
			"https://github.com/takegue/tree-sitter-sql-bigquery",
			"https://github.com/m-novikov/tree-sitter-sql",
			"https://github.com/dhcmrlchtdj/tree-sitter-sqlite",
			"https://github.com/metio/tree-sitter-ssh-client-config",
			"https://github.com/Himujjal/tree-sitter-svelte",
			"https://github.com/alex-pinkus/tree-sitter-swift",
			"https://github.com/SystemRDL/tree-sitter-systemrdl",
			"https://github.com/duskmoon314/tree-sitter-thrift",
			"https://github.com/ikatyang/tree-sitter-toml",
			"https://github.com/nvim-treesitter/tree-sitter-query",
			"https://github.com/BonaBeavis/tree-sitter-turtle",
			"https://github.com/gbprod/tree-sitter-twig",
			"https://github.com/tree-sitter/tree-sitter-typescript",
			"https://github.com/tree-sitter/tree-sitter-verilog",
			"https://github.com/alemuller/tree-sitter-vhdl",
			"https://github.com/ikatyang/tree-sitter-vue",
			"https://github.com/wasm-lsp/tree-sitter-wasm",
			"https://github.com/mehmetoguzderin/tree-sitter-wgsl",
			"https://github.com/ikatyang/tree-sitter-yaml",
			"https://github.com/Hubro/tree-sitter-yang",
			"https://github.com/maxxnino/tree-sitter-zig",
		},
	}
}

// Descriptor pairs a catalog URL with the local clone path derived from it.
type Descriptor struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// RepoPath returns the clone directory for a grammar repository URL: the
// URL's last non-empty path segment under parsersDir.
func RepoPath(parsersDir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse grammar url %q: %v", ErrConfig, rawURL, err)
	}
	name := path.Base(path.Clean("/" + u.Path))
	if name == "/" || name == "." {
		return "", fmt.Errorf("%w: no path segment in grammar url %q", ErrConfig, rawURL)
	}
	return filepath.Join(parsersDir, name), nil
}

// loadCatalog reads parsers.json at p. When the file is missing and save is
// set, fallback is written in its place and returned.
func loadCatalog(p string, fallback Catalog, save bool) (Catalog, error) {
	data, err := os.ReadFile(p)
	if err == nil {
		var c Catalog
		if err := json.Unmarshal(data, &c); err != nil {
			return Catalog{}, fmt.Errorf("%w: decode %s: %v", ErrConfig, p, err)
		}
		return c, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Catalog{}, fmt.Errorf("%w: read %s: %v", ErrConfig, p, err)
	}
	if !save {
		return Catalog{}, fmt.Errorf("%w: no grammar catalog at %s", ErrConfig, p)
	}
	if err := writeJSON(p, fallback); err != nil {
		return Catalog{}, err
	}
	return fallback, nil
}

// SearchConfig is the grammar search path configuration (config.json), using
// the same key as the tree-sitter CLI.
type SearchConfig struct {
	ParserDirectories []string `json:"parser-directories"`
}

// loadSearchConfig reads config.json at p. A missing file yields an empty
// configuration, or one pointing at parsersDir when save is set.
func loadSearchConfig(p, parsersDir string, save bool) (SearchConfig, error) {
	data, err := os.ReadFile(p)
	if err == nil {
		var c SearchConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return SearchConfig{}, fmt.Errorf("%w: decode %s: %v", ErrConfig, p, err)
		}
		return c, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return SearchConfig{}, fmt.Errorf("%w: read %s: %v", ErrConfig, p, err)
	}
	if !save {
		return SearchConfig{}, nil
	}
	c := SearchConfig{ParserDirectories: []string{parsersDir}}
	if err := writeJSON(p, c); err != nil {
		return SearchConfig{}, err
	}
	return c, nil
}

func writeJSON(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrConfig, filepath.Dir(p), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrConfig, p, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrConfig, p, err)
	}
	return nil
}
