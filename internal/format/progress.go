package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/duboisf/renderenv/internal/envsync"
	"github.com/duboisf/renderenv/internal/vars"
)

// Progress prints one line per variable and a final tally. It implements
// envsync.Reporter.
type Progress struct {
	w     io.Writer
	color bool
}

var _ envsync.Reporter = (*Progress)(nil)

// NewProgress creates a Progress writing to w, colored when w is a terminal.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, color: ColorEnabled(w)}
}

func (p *Progress) label(code, text string) string {
	return Colorize(p.color, code, "["+text+"]")
}

// Start announces the run.
func (p *Progress) Start(serviceID string, n int) {
	fmt.Fprintf(p.w, "\n%s Syncing %d environment variable(s) to %s...\n\n",
		p.label(Bold, "START"), n, serviceID)
}

// Attempt implements envsync.Reporter.
func (p *Progress) Attempt(key string) {
	fmt.Fprintf(p.w, "  Trying: %s... ", key)
}

// Conflict implements envsync.Reporter.
func (p *Progress) Conflict(string) {
	fmt.Fprintf(p.w, "%s Updating... ", p.label(Yellow, "EXISTS"))
}

// Done implements envsync.Reporter.
func (p *Progress) Done(o envsync.Outcome) {
	switch {
	case o.Action == envsync.Created:
		fmt.Fprintln(p.w, p.label(Green, "SUCCESS"))
	case o.Action == envsync.Updated:
		fmt.Fprintln(p.w, p.label(Green, "UPDATED"))
	case o.Err != nil:
		fmt.Fprintf(p.w, "%s %v\n", p.label(Red, "ERROR"), o.Err)
	default:
		fmt.Fprintf(p.w, "%s HTTP %d\n", p.label(Red, "FAIL"), o.StatusCode)
		if o.Detail != "" {
			fmt.Fprintf(p.w, "     Error: %s\n", o.Detail)
		}
	}
}

// Summary prints the final tally of a completed run.
func (p *Progress) Summary(res envsync.Result) {
	fmt.Fprintf(p.w, "\n%s %d success, %d failed\n\n", p.label(Bold, "RESULT"), res.Succeeded, res.Failed)
	if res.Failed > 0 {
		fmt.Fprintf(p.w, "%s Some variables failed to set.\n", p.label(Yellow, "WARNING"))
		fmt.Fprint(p.w, "   Please set them manually in the Render dashboard.\n\n")
		return
	}
	fmt.Fprintf(p.w, "%s All environment variables set!\n\n", p.label(Green, "SUCCESS"))
}

// Plan prints what a run would do without contacting the API. Values are
// masked since they are usually secrets.
func (p *Progress) Plan(serviceID string, set *vars.Set) {
	fmt.Fprintf(p.w, "%s %d environment variable(s) would be synced to %s:\n",
		p.label(Cyan, "DRY RUN"), set.Len(), serviceID)
	for _, v := range set.Variables() {
		fmt.Fprintf(p.w, "  %s=%s\n", v.Key, Mask(v.Value))
	}
}

// Mask hides all but the first two characters of values longer than eight.
func Mask(value string) string {
	r := []rune(value)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 8:
		return strings.Repeat("*", len(r))
	default:
		return string(r[:2]) + strings.Repeat("*", len(r)-2)
	}
}
