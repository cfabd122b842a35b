package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// add is used by the templates to turn zero-based indexes into row numbers.
func add(a, b int) int {
	return a + b
}

// ordinalDate returns the day with its English ordinal suffix.
func ordinalDate(day int) string {
	suffix := "th"
	switch day {
	case 1, 21, 31:
		suffix = "st"
	case 2, 22:
		suffix = "nd"
	case 3, 23:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	t = t.UTC()
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %s %d %d:%02d %s UTC", ordinalDate(t.Day()), t.Month(), t.Year(), hour, t.Minute(), t.Format("PM"))
}

func severityClass(severity string) string {
	return "sev-" + NormalizeSeverity(severity)
}

func upper(s string) string {
	return strings.ToUpper(NormalizeSeverity(s))
}

// NewHTMLTemplate parses the embedded report templates.
func NewHTMLTemplate() (*template.Template, error) {
	return template.New("report.html").
		Funcs(template.FuncMap{
			"add":            add,
			"formatDateTime": formatDateTime,
			"severityClass":  severityClass,
			"severityLabel":  upper,
		}).
		ParseFS(templatesFS, "templates/*.html")
}

type htmlView struct {
	Report
	Summary  Summary
	Findings []Finding
}

// RenderHTML writes r as a standalone HTML page.
func RenderHTML(w io.Writer, r Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	tmpl, err := NewHTMLTemplate()
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	view := htmlView{Report: r}
	if r.Kind == KindStaticAnalysis {
		view.Summary = r.StaticAnalysis.Summary
		if view.Summary.TotalFindings == 0 && len(r.StaticAnalysis.Findings) > 0 {
			view.Summary = CountBySeverity(r.StaticAnalysis.Findings)
		}
		view.Findings = append([]Finding(nil), r.StaticAnalysis.Findings...)
		sort.SliceStable(view.Findings, func(i, j int) bool {
			return severityRank(view.Findings[i].Severity) < severityRank(view.Findings[j].Severity)
		})
	}

	if err := tmpl.ExecuteTemplate(w, "report.html", view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
