package diff

import (
	"bytes"
	"fmt"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// ParseUnified parses multi-file unified diff text, numbering every line
// from its hunk header.
func ParseUnified(patch []byte) ([]FileDiff, error) {
	files, err := godiff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, fmt.Errorf("parse unified diff: %w", err)
	}

	out := make([]FileDiff, 0, len(files))
	for _, f := range files {
		fd := FileDiff{
			SourcePath: f.OrigName,
			TargetPath: f.NewName,
			Hunks:      make([]Hunk, 0, len(f.Hunks)),
		}
		for _, h := range f.Hunks {
			fd.Hunks = append(fd.Hunks, convertHunk(h))
		}
		out = append(out, fd)
	}
	return out, nil
}

func convertHunk(h *godiff.Hunk) Hunk {
	hunk := Hunk{
		SourceStart: int(h.OrigStartLine),
		SourceLines: int(h.OrigLines),
		TargetStart: int(h.NewStartLine),
		TargetLines: int(h.NewLines),
	}

	src, tgt := hunk.SourceStart, hunk.TargetStart
	body := bytes.TrimSuffix(h.Body, []byte("\n"))
	if len(body) == 0 {
		return hunk
	}
	for _, raw := range bytes.Split(body, []byte("\n")) {
		line := string(raw)
		if line == "" {
			// Some tools strip the leading space of empty context lines.
			line = " "
		}
		text := line[1:]
		switch line[0] {
		case ' ':
			hunk.Lines = append(hunk.Lines, LineEntry{Kind: LineContext, SourceLine: src, TargetLine: tgt, Text: text})
			src++
			tgt++
		case '-':
			hunk.Lines = append(hunk.Lines, LineEntry{Kind: LineRemoved, SourceLine: src, Text: text})
			src++
		case '+':
			hunk.Lines = append(hunk.Lines, LineEntry{Kind: LineAdded, TargetLine: tgt, Text: text})
			tgt++
		default:
			// "\ No newline at end of file"
		}
	}
	return hunk
}
