package web

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/haku-324897/askul-navilion/pkg/reconcile"
)

//go:embed templates
var templatesFs embed.FS

// ReportContext is the data for one batch report.
type ReportContext struct {
	Title       string
	GeneratedAt time.Time
	Currency    string
	Rows        []reconcile.ReconciledRow
}

func (c ReportContext) FormattedGeneratedAt() string {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.UTC
	}
	return c.GeneratedAt.In(loc).Format("2006-01-02T15:04:05 MST")
}

func (c ReportContext) Header() []string {
	return reconcile.Header()
}

// Table returns the rendered cell values of every row.
func (c ReportContext) Table() [][]string {
	t := make([][]string, len(c.Rows))
	for i, r := range c.Rows {
		t[i] = r.Values(c.Currency)
	}
	return t
}

// Summary counts rows per judgment, keyed by Judgment.String(); rows that
// could not be compared count under "incomparable".
func (c ReportContext) Summary() map[string]int {
	s := map[string]int{}
	for _, r := range c.Rows {
		s[r.Judgment.String()]++
	}
	return s
}

func RenderReport(w io.Writer, c ReportContext) error {
	t, err := template.ParseFS(templatesFs, "templates/report.html.tpl")
	if err != nil {
		return err
	}
	t, err = t.ParseFS(templatesFs, "templates/common/*")
	if err != nil {
		return err
	}

	err = t.Execute(w, c)
	if err != nil {
		return err
	}
	return nil
}
