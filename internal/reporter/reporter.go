package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/bytesweep/internal/cleaner"
	"github.com/fenilsonani/bytesweep/internal/filelock"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/ui/styles"
	layout "github.com/fenilsonani/bytesweep/internal/ui/utils"
	"github.com/fenilsonani/bytesweep/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	case "":
		return FormatSummary, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (want summary, table, json or yaml)", s)
	}
}

const pathWidth = 60

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat

	title   lipgloss.Style
	danger  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	dim     lipgloss.Style
}

// New creates a new Reporter. Styling follows the capabilities of writer,
// so files and pipes receive plain text.
func New(writer io.Writer, format OutputFormat) *Reporter {
	re := lipgloss.NewRenderer(writer)
	return &Reporter{
		writer:  writer,
		format:  format,
		title:   re.NewStyle().Bold(true).Foreground(styles.Primary),
		danger:  re.NewStyle().Foreground(styles.Danger),
		success: re.NewStyle().Foreground(styles.Success),
		warning: re.NewStyle().Foreground(styles.Warning),
		dim:     re.NewStyle().Foreground(styles.TextDim),
	}
}

// Report generates a report of a plan
func (r *Reporter) Report(p *plan.Plan) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(p)
	case FormatJSON:
		return r.encodeJSON(r.planDocument(p))
	case FormatYAML:
		return r.encodeYAML(r.planDocument(p))
	case FormatSummary:
		return r.reportSummary(p)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportResult generates a report of an executed plan
func (r *Reporter) ReportResult(res *cleaner.Result) error {
	switch r.format {
	case FormatTable:
		return r.resultTable(res)
	case FormatJSON:
		return r.encodeJSON(r.resultDocument(res))
	case FormatYAML:
		return r.encodeYAML(r.resultDocument(res))
	case FormatSummary:
		return r.resultSummary(res)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary prints per-category counts, the collisions and the findings
func (r *Reporter) reportSummary(p *plan.Plan) error {
	st := p.Stats()

	fmt.Fprintln(r.writer, r.title.Render("=== Sweep Plan ==="))
	fmt.Fprintf(r.writer, "Root: %s\n", p.Root())
	fmt.Fprintf(r.writer, "Scanned: %d files, %s (%d classified, %d unclassified)\n",
		st.Scanned, utils.FormatBytes(st.Bytes), st.Classified, st.Unclassified)
	if st.Groups > 0 {
		fmt.Fprintf(r.writer, "Text groups: %d\n", st.Groups)
	}

	if p.Empty() && len(p.Collisions()) == 0 {
		fmt.Fprintln(r.writer, r.success.Render("\nNothing to do."))
		r.findings(p)
		return nil
	}

	fmt.Fprintf(r.writer, "\nBreakdown by Category:\n")
	for _, cc := range p.Counts() {
		fmt.Fprintf(r.writer, "  %-10s %s, %s, %s\n",
			cc.Category.String()+":",
			r.danger.Render(fmt.Sprintf("%d to delete (%s)", cc.Deletes, utils.FormatBytes(cc.DeleteBytes))),
			r.success.Render(fmt.Sprintf("%d to rename", cc.Renames)),
			r.warning.Render(fmt.Sprintf("%d collisions", cc.Collisions)))
	}

	fmt.Fprintf(r.writer, "\nTotal: %d deletions (%s), %d renames\n",
		len(p.Deletes()), utils.FormatBytes(p.DeleteBytes()), len(p.Renames()))

	if cols := p.Collisions(); len(cols) > 0 {
		fmt.Fprintf(r.writer, "\nRenames skipped:\n")
		for _, c := range cols {
			fmt.Fprintf(r.writer, "  %s %s\n", layout.TruncatePath(c.File.Path, pathWidth), r.dim.Render("("+c.Reason+")"))
		}
	}

	r.findings(p)
	return nil
}

func (r *Reporter) findings(p *plan.Plan) {
	if st := p.Stats(); st.ScanErrors > 0 {
		fmt.Fprintf(r.writer, "\n%s\n", r.warning.Render(fmt.Sprintf("Unreadable paths: %d", st.ScanErrors)))
	}
	if n := len(p.Findings()); n > 0 {
		fmt.Fprintf(r.writer, "Findings: %d (use --output table for details)\n", n)
	}
}

// reportTable lists every planned action
func (r *Reporter) reportTable(p *plan.Plan) error {
	rule := strings.Repeat("─", 120)

	// Print header
	fmt.Fprintf(r.writer, "%-8s | %-60s | %-10s | %-9s | %s\n", "Action", "Path", "Size", "Category", "Detail")
	fmt.Fprintln(r.writer, rule)

	// Print rows
	for _, a := range p.Deletes() {
		fmt.Fprintf(r.writer, "%-8s | %-60s | %-10s | %-9s | %s\n",
			"delete", layout.TruncatePath(a.File.Path, pathWidth), utils.FormatBytes(a.File.Size), a.Category, a.Reason)
	}
	for _, a := range p.Renames() {
		fmt.Fprintf(r.writer, "%-8s | %-60s | %-10s | %-9s | -> %s\n",
			"rename", layout.TruncatePath(a.File.Path, pathWidth), utils.FormatBytes(a.File.Size), a.Category, a.NewName)
	}
	for _, c := range p.Collisions() {
		fmt.Fprintf(r.writer, "%-8s | %-60s | %-10s | %-9s | %s\n",
			"skip", layout.TruncatePath(c.File.Path, pathWidth), utils.FormatBytes(c.File.Size), c.Category, c.Reason)
	}

	if findings := p.Findings(); len(findings) > 0 {
		fmt.Fprintf(r.writer, "\nFindings:\n")
		for _, f := range findings {
			fmt.Fprintf(r.writer, "  %-60s %s\n", layout.TruncatePath(f.Path, pathWidth), f.Message)
		}
	}

	// Print summary
	fmt.Fprintf(r.writer, "\n%s\n", rule)
	fmt.Fprintf(r.writer, "Total: %d deletions (%s), %d renames, %d collisions\n",
		len(p.Deletes()), utils.FormatBytes(p.DeleteBytes()), len(p.Renames()), len(p.Collisions()))

	return nil
}

type planDocument struct {
	Timestamp            string `json:"timestamp" yaml:"timestamp"`
	DeleteBytesFormatted string `json:"delete_bytes_formatted" yaml:"delete_bytes_formatted"`
	plan.Snapshot        `yaml:",inline"`
}

func (r *Reporter) planDocument(p *plan.Plan) planDocument {
	return planDocument{
		Timestamp:            time.Now().Format(time.RFC3339),
		DeleteBytesFormatted: utils.FormatBytes(p.DeleteBytes()),
		Snapshot:             p.Snapshot(),
	}
}

// resultSummary prints what was applied and what was skipped
func (r *Reporter) resultSummary(res *cleaner.Result) error {
	heading := "=== Sweep Result ==="
	verb := "Deleted"
	renamed := "Renamed"
	if res.DryRun {
		heading = "=== Sweep Result (dry run) ==="
		verb = "Would delete"
		renamed = "Would rename"
	}

	fmt.Fprintln(r.writer, r.title.Render(heading))
	fmt.Fprintf(r.writer, "%s: %s\n", verb, r.danger.Render(fmt.Sprintf("%d files (%s)", len(res.Deleted), utils.FormatBytes(res.DeletedSize))))
	fmt.Fprintf(r.writer, "%s: %s\n", renamed, r.success.Render(fmt.Sprintf("%d files", len(res.Renamed))))
	if len(res.Errors) > 0 {
		fmt.Fprintf(r.writer, "Skipped: %s\n", r.warning.Render(fmt.Sprintf("%d files", len(res.Errors))))
		fmt.Fprint(r.writer, cleaner.FormatErrorSummary(res.Errors))
	}
	fmt.Fprintf(r.writer, "Duration: %s\n", res.Duration.Round(time.Millisecond))

	return nil
}

// resultTable lists every applied and skipped action
func (r *Reporter) resultTable(res *cleaner.Result) error {
	rule := strings.Repeat("─", 120)

	fmt.Fprintf(r.writer, "%-8s | %-60s | %s\n", "Status", "Path", "Detail")
	fmt.Fprintln(r.writer, rule)

	for _, a := range res.Deleted {
		fmt.Fprintf(r.writer, "%-8s | %-60s | %s\n", "deleted", layout.TruncatePath(a.File.Path, pathWidth), utils.FormatBytes(a.File.Size))
	}
	for _, a := range res.Renamed {
		fmt.Fprintf(r.writer, "%-8s | %-60s | -> %s\n", "renamed", layout.TruncatePath(a.File.Path, pathWidth), a.NewName)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(r.writer, "%-8s | %-60s | %s\n", "skipped", layout.TruncatePath(e.Path, pathWidth), e.Reason)
	}

	fmt.Fprintf(r.writer, "\n%s\n", rule)
	fmt.Fprintf(r.writer, "Total: %d deleted (%s), %d renamed, %d skipped\n",
		len(res.Deleted), utils.FormatBytes(res.DeletedSize), len(res.Renamed), len(res.Errors))

	return nil
}

type resultDocument struct {
	Timestamp            string `json:"timestamp" yaml:"timestamp"`
	DeletedSizeFormatted string `json:"deleted_size_formatted" yaml:"deleted_size_formatted"`
	cleaner.Result       `yaml:",inline"`
}

func (r *Reporter) resultDocument(res *cleaner.Result) resultDocument {
	return resultDocument{
		Timestamp:            time.Now().Format(time.RFC3339),
		DeletedSizeFormatted: utils.FormatBytes(res.DeletedSize),
		Result:               *res,
	}
}

func (r *Reporter) encodeJSON(doc interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func (r *Reporter) encodeYAML(doc interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(doc)
}

// SaveToFile saves the plan report to a file atomically
func SaveToFile(p *plan.Plan, path string, format OutputFormat) error {
	var buf bytes.Buffer
	if err := New(&buf, format).Report(p); err != nil {
		return err
	}
	return filelock.AtomicWrite(path, buf.Bytes())
}
