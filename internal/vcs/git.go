package vcs

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"regexp"
	"strings"
)

// Git shells out to the git binary. Bin defaults to "git".
type Git struct {
	Bin string
}

func (g Git) bin() string {
	if g.Bin == "" {
		return "git"
	}
	return g.Bin
}

// run executes git in dir and returns stdout. A non-zero exit is reported
// with stderr, or stdout when stderr is empty.
func (g Git) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.bin(), args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return stdout.Bytes(), nil
}

// Clone clones url into dir. Both are passed after "--" so a catalog entry
// cannot be read as an option.
func (g Git) Clone(ctx context.Context, url, dir string) error {
	_, err := g.run(ctx, "", "clone", "--", url, dir)
	return err
}

// DiffRange returns the unified diff between two revisions of repo.
func (g Git) DiffRange(ctx context.Context, repo, from, to string) ([]byte, error) {
	return g.run(ctx, repo, "diff", from+".."+to)
}

// CheckApply reports whether the patch file applies cleanly to repo.
func (g Git) CheckApply(ctx context.Context, repo, patchFile string) (bool, error) {
	cmd := exec.CommandContext(ctx, g.bin(), "apply", "--check", "--", patchFile)
	cmd.Dir = repo
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("git apply: %w", err)
	}
	return true, nil
}

// IsWorkTree reports whether dir is inside a git work tree.
func (g Git) IsWorkTree(ctx context.Context, dir string) bool {
	out, err := g.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// CloneDirName returns the directory name git would clone rawURL into: the
// last path segment without a ".git" suffix, or "." when there is none.
func CloneDirName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "."
	}
	name := path.Base(path.Clean("/" + u.Path))
	if name == "/" {
		return "."
	}
	return strings.TrimSuffix(name, ".git")
}

var (
	revRange  = regexp.MustCompile(`^([0-9a-fA-F]+)\.\.([0-9a-fA-F]+)$`)
	revSingle = regexp.MustCompile(`^[0-9a-fA-F]{6,64}$`)
)

// ParseRevisions interprets arg as "<from>..<to>" or a single revision,
// which is diffed against HEAD. ok is false for anything else.
func ParseRevisions(arg string) (from, to string, ok bool) {
	if m := revRange.FindStringSubmatch(arg); m != nil {
		return m[1], m[2], true
	}
	if revSingle.MatchString(arg) {
		return "HEAD", arg, true
	}
	return "", "", false
}

// IsRemote reports whether arg looks like a clonable URL rather than a path.
func IsRemote(arg string) bool {
	u, err := url.Parse(arg)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git", "file":
		return true
	}
	return false
}
