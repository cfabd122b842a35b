package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/bulwark-sec/bulwark/pkg/shared"
)

const maxTableTextWidth = 60

// Render writes r in the layout matching its kind.
func Render(w io.Writer, r Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	switch r.Kind {
	case KindScoping:
		return RenderScoping(w, r.Scoping)
	default:
		return RenderStaticAnalysis(w, r.StaticAnalysis)
	}
}

// RenderStaticAnalysis prints the summary line and a findings table ordered by severity.
func RenderStaticAnalysis(w io.Writer, r *StaticAnalysisReport) error {
	if r == nil {
		return fmt.Errorf("static-analysis report is nil")
	}

	summary := r.Summary
	if summary.TotalFindings == 0 && len(r.Findings) > 0 {
		summary = CountBySeverity(r.Findings)
	}
	fmt.Fprintf(w, "Report %s (%s)\n", r.ID, firstNonEmpty(r.RepositoryURL, r.ContractName, "uploaded contracts"))
	fmt.Fprintf(w, "Findings: %d total, %d critical, %d high, %d medium, %d low, %d info\n",
		summary.TotalFindings, summary.Critical, summary.High, summary.Medium, summary.Low, summary.Info)

	if len(r.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return nil
	}

	findings := make([]Finding, len(r.Findings))
	copy(findings, r.Findings)
	sort.SliceStable(findings, func(i, j int) bool {
		return severityRank(findings[i].Severity) < severityRank(findings[j].Severity)
	})

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Severity", "Title", "Location"})

	var data [][]string
	for i, f := range findings {
		location := f.File
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			colorSeverity(f.Severity),
			truncate(f.Title, maxTableTextWidth),
			truncate(location, maxTableTextWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// RenderScoping prints a scoping report as a two-column table.
func RenderScoping(w io.Writer, r *ScopingReport) error {
	if r == nil {
		return fmt.Errorf("scoping report is nil")
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})

	data := [][]string{
		{"Report", r.ID},
		{"Repository", r.RepositoryURL},
		{"Complexity", r.Complexity},
		{"Files", strconv.Itoa(r.TotalFiles)},
		{"Lines", strconv.Itoa(r.TotalLines)},
		{"Estimated hours", strconv.FormatFloat(r.EstimatedHours, 'f', 1, 64)},
		{"Estimated cost", strconv.FormatFloat(r.EstimatedCost, 'f', 2, 64)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if r.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", r.Summary)
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
	return nil
}

// RenderReportList prints one row per stored report.
func RenderReportList(w io.Writer, reports []StaticAnalysisReport) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Source", "Created", "Findings", "Critical", "High"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, r := range reports {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02 15:04")
		}
		data = append(data, []string{
			r.ID,
			truncate(firstNonEmpty(r.RepositoryURL, r.ContractName), maxTableTextWidth),
			created,
			strconv.Itoa(r.Summary.TotalFindings),
			strconv.Itoa(r.Summary.Critical),
			strconv.Itoa(r.Summary.High),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// RenderFiles prints discovered contract files.
func RenderFiles(w io.Writer, files []shared.ContractFile) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Language", "Size"})

	var data [][]string
	for _, f := range files {
		size := "-"
		if f.Size > 0 {
			size = strconv.FormatInt(f.Size, 10)
		}
		data = append(data, []string{truncate(f.Path, maxTableTextWidth*2), f.Language, size})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// RenderRepositories prints repository references.
func RenderRepositories(w io.Writer, repos []shared.Repository) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "Visibility", "URL"})

	var data [][]string
	for _, r := range repos {
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		data = append(data, []string{r.FullName, visibility, r.URL})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// RenderFactors prints the exportable factor groups sorted by key.
func RenderFactors(w io.Writer, groups map[string]FactorGroup) error {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Group", "Factor", "Type", "Description"})

	var data [][]string
	for _, k := range keys {
		group := groups[k]
		names := make([]string, 0, len(group.Factors))
		for name := range group.Factors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f := group.Factors[name]
			data = append(data, []string{k, name, f.Type, truncate(f.Description, maxTableTextWidth)})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
