package diff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StripPathPrefix removes the a/ or b/ prefix git puts on diff paths.
func StripPathPrefix(p string) string {
	if s, ok := strings.CutPrefix(p, "a/"); ok {
		return s
	}
	if s, ok := strings.CutPrefix(p, "b/"); ok {
		return s
	}
	return p
}

// ReadSource loads the original content of a diff path relative to root.
func ReadSource(root, diffPath string) (string, error) {
	rel := StripPathPrefix(diffPath)
	p := filepath.Join(root, filepath.FromSlash(rel))

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: '%s' does not exist", ErrMissingSourceFile, rel)
		}
		return "", fmt.Errorf("%w: %v", ErrMissingSourceFile, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: '%s' is not a file", ErrMissingSourceFile, rel)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingSourceFile, err)
	}
	return string(data), nil
}

// Load reads fd's source file from root and translates its hunks into
// edits. The returned Diff has no tree yet.
func Load(root string, fd FileDiff) (*Diff, error) {
	source, err := ReadSource(root, fd.SourcePath)
	if err != nil {
		return nil, err
	}

	edits, err := Translate(fd.Hunks, NewLineIndex(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fd.SourcePath, err)
	}

	return &Diff{
		Source:     source,
		SourcePath: fd.SourcePath,
		TargetPath: fd.TargetPath,
		Edits:      edits,
	}, nil
}
