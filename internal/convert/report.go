package convert

import (
	"fmt"
	"io"
	"strings"
)

// Report summarizes a conversion run.
type Report struct {
	RunID  string       `json:"run_id"`
	DryRun bool         `json:"dry_run"`
	Packs  []PackResult `json:"packs"`
}

// PackResult is the outcome of one pack. Paths are relative to the pack's
// layout directory.
type PackResult struct {
	Pack      string   `json:"pack"`
	State     State    `json:"state"`
	Groups    int      `json:"groups"`
	Created   []string `json:"created,omitempty"`
	Rewritten []string `json:"rewritten,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Failed reports whether any pack failed.
func (r *Report) Failed() bool {
	for _, p := range r.Packs {
		if p.State == StateFailed {
			return true
		}
	}

	return false
}

// WriteText renders a human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	for _, p := range r.Packs {
		fmt.Fprintf(&b, "%s: %s (%d layouts)\n", p.Pack, p.State, p.Groups)

		for _, f := range p.Created {
			fmt.Fprintf(&b, "  + %s\n", f)
		}

		for _, w := range p.Warnings {
			fmt.Fprintf(&b, "  ! %s\n", w)
		}

		if p.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", p.Error)
		}
	}

	if r.DryRun {
		b.WriteString("dry run: no pack was modified\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}
