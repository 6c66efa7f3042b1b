package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haku-324897/askul-navilion/pkg/reconcile"
	"github.com/haku-324897/askul-navilion/pkg/scraper"
)

func TestRenderReport(t *testing.T) {
	rec := scraper.SecondaryRecord{Name: "B", Unit: "1箱", Price: "900", Identifier: "123"}
	rows := []reconcile.ReconciledRow{
		reconcile.Reconcile(
			scraper.PrimaryRecord{Name: "<A&B>", Unit: "1箱", Barcode: "4901234567894", Price: "1000"},
			reconcile.Lookup{Candidates: []string{"https://www.ntps-shop.com/product/123/"}, Record: &rec},
		),
		reconcile.Reconcile(scraper.PrimaryRecord{URL: "https://www.askul.co.jp/p/2/", Error: "timeout"}, reconcile.Lookup{}),
	}

	var buf bytes.Buffer
	err := RenderReport(&buf, ReportContext{
		Title:       "比較結果",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Currency:    "￥",
		Rows:        rows,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>比較結果</title>")
	assert.Contains(t, out, "<th>ナビリオン値差</th>")
	assert.Contains(t, out, "&lt;A&amp;B&gt;", "cell text is escaped")
	assert.Contains(t, out, "<td>-100</td>")
	assert.Contains(t, out, "<td>安い</td>")
	assert.Contains(t, out, "<td>timeout</td>")
	assert.Contains(t, out, "cheaper: 1,")
	assert.NotContains(t, out, "データが取得できませんでした")
	assert.NotContains(t, out, "<link", "report is self-contained")
}

func TestRenderReportNoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, ReportContext{Title: "empty"}))
	assert.Contains(t, buf.String(), "データが取得できませんでした。")
}

func TestSummary(t *testing.T) {
	c := ReportContext{Rows: []reconcile.ReconciledRow{
		{Judgment: reconcile.Cheaper},
		{Judgment: reconcile.Cheaper},
		{Judgment: reconcile.Incomparable},
	}}
	assert.Equal(t, map[string]int{"cheaper": 2, "incomparable": 1}, c.Summary())
}
