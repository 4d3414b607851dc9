// Package readme validates pack README files.
package readme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Markers forcing the HTML detection either way.
const (
	notHTMLMarker = "<!-- NOT_HTML_DOC -->"
	htmlMarker    = "<!-- HTML_DOC -->"
	htmlProbeSize = 4096
)

const rawContentPrefix = "https://github.com/demisto/content/raw"

// Sections that must have a body when present.
var Sections = []string{
	"Troubleshooting",
	"Use Cases",
	"Known Limitations",
	"Additional Information",
}

// Leftovers are template placeholders that must be replaced.
var Leftovers = []string{
	"FILL IN REQUIRED PERMISSIONS HERE",
	"version xx",
}

var imageLinkRe = regexp.MustCompile(`(?i)(!\[.*?\]|src=)(\(|")(https://github\.com/demisto/content/.*?)(\)|")`)

// Verifier checks that a document parses as MDX. Parse failures wrap
// ErrInvalidMDX; any other error means the check could not run.
type Verifier interface {
	Verify(ctx context.Context, text string) error
}

// Result is the outcome of validating one README.
type Result struct {
	Path     string   `json:"path"`
	Problems []string `json:"problems,omitempty"`
}

// Valid reports whether no check failed.
func (r Result) Valid() bool {
	return len(r.Problems) == 0
}

// Error joins the problems, one per line.
func (r Result) Error() string {
	return strings.Join(r.Problems, "\n")
}

// Validator runs the README checks. A nil MDX skips the MDX check.
type Validator struct {
	MDX    Verifier
	Logger *zap.Logger
}

// Validate reads the README at path and runs every check on it.
func (v *Validator) Validate(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path}, fmt.Errorf("reading %s: %w", path, err)
	}

	return v.ValidateText(ctx, path, string(data))
}

// ValidateText runs every check on text; path is only used for reporting.
func (v *Validator) ValidateText(ctx context.Context, path, text string) (Result, error) {
	log := v.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res := Result{Path: path}
	res.Problems = append(res.Problems, ImagePathProblems(text)...)
	res.Problems = append(res.Problems, EmptySectionProblems(text)...)
	res.Problems = append(res.Problems, LeftoverProblems(text)...)

	if v.MDX == nil || IsHTML(text) {
		log.Debug("skipping MDX check", zap.String("path", path), zap.Bool("verifier", v.MDX != nil))
		return res, nil
	}

	err := v.MDX.Verify(ctx, FixMDX(text))

	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidMDX):
		res.Problems = append(res.Problems, err.Error())
	default:
		return res, fmt.Errorf("verifying MDX of %s: %w", path, err)
	}

	log.Debug("validated readme", zap.String("path", path), zap.Int("problems", len(res.Problems)))

	return res, nil
}

// ImagePathProblems reports GitHub image links that do not use raw URLs.
func ImagePathProblems(text string) []string {
	var problems []string

	for _, m := range imageLinkRe.FindAllStringSubmatch(text, -1) {
		link := m[3]
		if hasPrefixFold(link, rawContentPrefix) {
			continue
		}

		problems = append(problems, fmt.Sprintf(
			"detected following image url:\n%s\nWhich is not the raw link. You probably want to use the following raw image url:\n%s",
			link, strings.Replace(link, "blob", "raw", 1)))
	}

	return problems
}

// EmptySectionProblems reports known sections whose headline is followed by
// nothing or by another headline of the same level.
func EmptySectionProblems(text string) []string {
	var problems []string

	for _, section := range Sections {
		re := regexp.MustCompile(`(?i)(## ` + regexp.QuoteMeta(section) + `\n*)(-*\s*\n\n?)?(\s*.*)`)

		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		next := m[3]
		if next == "" || (strings.HasPrefix(next, "##") && !strings.HasPrefix(next, "###")) {
			problems = append(problems, section+" is empty, please elaborate or delete the section.")
		}
	}

	return problems
}

// LeftoverProblems reports template placeholders left in the text.
func LeftoverProblems(text string) []string {
	var problems []string

	lower := strings.ToLower(text)

	for _, leftover := range Leftovers {
		if strings.Contains(lower, strings.ToLower(leftover)) {
			problems = append(problems, fmt.Sprintf("Replace %q with a suitable info.", leftover))
		}
	}

	return problems
}

// IsHTML guesses whether a README is written in HTML rather than markdown.
func IsHTML(text string) bool {
	if len(text) > htmlProbeSize {
		text = text[:htmlProbeSize]
	}

	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, notHTMLMarker):
		return false
	case strings.HasPrefix(text, htmlMarker):
		return true
	}

	return strings.HasPrefix(text, "<p>") ||
		strings.HasPrefix(text, "<!DOCTYPE html>") ||
		(strings.Contains(text, "<thead>") && strings.Contains(text, "<tbody>"))
}

var (
	brRe      = regexp.MustCompile(`(?i)<br>(</br>)?`)
	hrRe      = regexp.MustCompile(`(?i)<hr>(</hr>)?`)
	preOpenRe = regexp.MustCompile(`(?i)<pre>`)
	preEndRe  = regexp.MustCompile(`(?i)</pre>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// FixMDX rewrites HTML that MDX rejects the way the docs build does: void
// tags are self-closed, pre blocks become template literals and comments are
// dropped.
func FixMDX(text string) string {
	text = selfClose(brRe, text, "<br/>")
	text = selfClose(hrRe, text, "<hr/>")
	text = preOpenRe.ReplaceAllLiteralString(text, "<pre>{`")
	text = preEndRe.ReplaceAllLiteralString(text, "`}</pre>")

	return commentRe.ReplaceAllLiteralString(text, "")
}

// selfClose replaces an opening tag with repl unless the closing tag follows.
func selfClose(re *regexp.Regexp, text, repl string) string {
	return re.ReplaceAllStringFunc(text, func(m string) string {
		if len(m) > len("<br>") {
			return m
		}

		return repl
	})
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
