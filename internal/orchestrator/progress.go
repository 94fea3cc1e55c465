package orchestrator

import "fmt"

// Stage identifies a step of the per-file pipeline.
type Stage int

const (
	StageInstall Stage = iota
	StageLoad
	StageResolve
	StageParse
	StageEdit
	StageFold
)

func (s Stage) String() string {
	names := [...]string{
		"install",
		"load",
		"resolve",
		"parse",
		"edit",
		"fold",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ProgressEvent is emitted to the user during a run.
type ProgressEvent struct {
	Stage   Stage
	File    string
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a file within a stage.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	subject := event.File
	if subject == "" {
		subject = event.Stage.String()
	}
	switch event.Status {
	case ProgressWorking:
		if event.Message != "" {
			return fmt.Sprintf("  ● %s: %s (%s)...", event.Stage, subject, event.Message)
		}
		return fmt.Sprintf("  ● %s: %s...", event.Stage, subject)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s (%s)", subject, event.Message)
		}
		return fmt.Sprintf("  ✓ %s complete", subject)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed at %s: %s", subject, event.Stage, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", subject)
	}
}
