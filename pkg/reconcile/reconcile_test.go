package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haku-324897/askul-navilion/pkg/scraper"
)

const searchURL = "https://www.ntps-shop.com/search/res/4901234567894/"

func matched(rec scraper.SecondaryRecord) Lookup {
	return Lookup{
		SearchURL:  searchURL,
		Candidates: []string{"https://www.ntps-shop.com/product/123/"},
		Record:     &rec,
	}
}

func primaryWith(price, unit string) scraper.PrimaryRecord {
	return scraper.PrimaryRecord{
		Name:    "コピー用紙",
		Unit:    unit,
		Barcode: "4901234567894",
		Price:   price,
		URL:     "https://www.askul.co.jp/p/1234567/",
	}
}

func TestReconcileClassification(t *testing.T) {
	full := scraper.SecondaryRecord{Name: "コピー用紙", Unit: "1箱", Price: "￥900", Identifier: "123"}

	tests := []struct {
		name       string
		primary    scraper.PrimaryRecord
		lookup     Lookup
		wantStatus MatchStatus
		wantURL    string
	}{
		{
			name:       "no barcode ignores the lookup",
			primary:    scraper.PrimaryRecord{Name: "x"},
			lookup:     matched(full),
			wantStatus: StatusNoBarcode,
		},
		{
			name:       "no candidate links the search page",
			primary:    primaryWith("￥1000", "1箱"),
			lookup:     Lookup{SearchURL: searchURL},
			wantStatus: StatusNoCandidate,
			wantURL:    searchURL,
		},
		{
			name:       "candidate outside product paths",
			primary:    primaryWith("￥1000", "1箱"),
			lookup:     Lookup{SearchURL: searchURL, Candidates: []string{"https://www.ntps-shop.com/category/9/"}},
			wantStatus: StatusURLPatternMismatch,
		},
		{
			name:       "candidate never fetched",
			primary:    primaryWith("￥1000", "1箱"),
			lookup:     Lookup{SearchURL: searchURL, Candidates: []string{"https://www.ntps-shop.com/product/123/"}},
			wantStatus: StatusExtractionFailed,
		},
		{
			name:       "candidate fetch error",
			primary:    primaryWith("￥1000", "1箱"),
			lookup:     matched(scraper.SecondaryRecord{Error: "timeout"}),
			wantStatus: StatusExtractionFailed,
		},
		{
			name:       "candidate page without data",
			primary:    primaryWith("￥1000", "1箱"),
			lookup:     matched(scraper.SecondaryRecord{Identifier: "123"}),
			wantStatus: StatusExtractionFailed,
		},
		{
			name:       "confirmed",
			primary:    primaryWith("￥1000", "1箱"),
			lookup:     matched(full),
			wantStatus: StatusConfirmedMatch,
			wantURL:    "https://www.ntps-shop.com/product/123/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Reconcile(tt.primary, tt.lookup)
			assert.Equal(t, tt.wantStatus, row.Status)
			assert.Equal(t, tt.wantURL, row.SecondaryURL)
			if tt.wantStatus != StatusConfirmedMatch {
				assert.Equal(t, scraper.SecondaryRecord{}, row.Secondary)
				assert.Nil(t, row.PriceDelta)
				assert.Equal(t, Incomparable, row.Judgment)
			}
		})
	}
}

func TestReconcilePriceDelta(t *testing.T) {
	tests := []struct {
		name      string
		primary   scraper.PrimaryRecord
		secondary scraper.SecondaryRecord
		wantDelta *int
		want      Judgment
	}{
		{
			name:      "secondary cheaper",
			primary:   primaryWith("￥1000", "1箱（24本）"),
			secondary: scraper.SecondaryRecord{Price: "￥900", Unit: "1箱 (24本)"},
			wantDelta: intPtr(-100),
			want:      Cheaper,
		},
		{
			name:      "secondary more expensive",
			primary:   primaryWith("￥1,000", "12個"),
			secondary: scraper.SecondaryRecord{Price: "￥1,120", Unit: "１２個"},
			wantDelta: intPtr(120),
			want:      MoreExpensive,
		},
		{
			name:      "equal",
			primary:   primaryWith("￥500", "1袋"),
			secondary: scraper.SecondaryRecord{Price: "￥500", Unit: "1袋"},
			wantDelta: intPtr(0),
			want:      Equal,
		},
		{
			name:      "different units",
			primary:   primaryWith("￥1000", "1箱（24本）"),
			secondary: scraper.SecondaryRecord{Price: "￥10", Unit: "1箱（12本）"},
			want:      Incomparable,
		},
		{
			name:      "both units missing",
			primary:   primaryWith("￥1000", ""),
			secondary: scraper.SecondaryRecord{Name: "x", Price: "￥900"},
			want:      Incomparable,
		},
		{
			name:      "secondary price missing",
			primary:   primaryWith("￥1000", "1箱"),
			secondary: scraper.SecondaryRecord{Unit: "1箱"},
			want:      Incomparable,
		},
		{
			name:      "primary price missing",
			primary:   primaryWith("", "1箱"),
			secondary: scraper.SecondaryRecord{Price: "￥900", Unit: "1箱"},
			want:      Incomparable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Reconcile(tt.primary, matched(tt.secondary))
			require.Equal(t, StatusConfirmedMatch, row.Status)
			assert.Equal(t, tt.wantDelta, row.PriceDelta)
			assert.Equal(t, tt.want, row.Judgment)
		})
	}
}

func TestExpandQuery(t *testing.T) {
	const tmpl = "https://www.askul.co.jp/p/{id}/"
	assert.Equal(t, "https://www.askul.co.jp/p/1234567/", ExpandQuery("1234567", tmpl))
	assert.Equal(t, "https://www.askul.co.jp/p/1234567/", ExpandQuery("  1234567 ", tmpl))
	assert.Equal(t, "https://example.com/p/9/", ExpandQuery("https://example.com/p/9/", tmpl))
	assert.Equal(t, "http://example.com/x", ExpandQuery("http://example.com/x", tmpl))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "同類商品", StatusConfirmedMatch.Label())
	assert.Equal(t, "類似商品", StatusNoCandidate.Label())
	assert.Equal(t, "情報取得失敗", StatusExtractionFailed.Label())
	assert.Equal(t, "URLパターン不一致", StatusURLPatternMismatch.Label())
	assert.Equal(t, "url-pattern-mismatch", StatusURLPatternMismatch.String())

	assert.Equal(t, "安い", Cheaper.Label())
	assert.Equal(t, "高い", MoreExpensive.Label())
	assert.Equal(t, "同じ", Equal.Label())
	assert.Equal(t, "", Incomparable.Label())
}

func intPtr(n int) *int { return &n }
