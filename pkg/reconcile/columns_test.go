package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haku-324897/askul-navilion/pkg/scraper"
)

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{
		"as製品", "as員数", "JANコード", "asURL", "as価格", "as数量", "as購入額", "as種類",
		"nv製品", "nv員数", "nv員数（複数有）", "nv申し込み番号", "NV小売価格", "nv数量", "nv購入額", "nvURL",
		"備考", "ナビリオン値差", "価格判定",
	}, Header())
}

func TestValues(t *testing.T) {
	row := Reconcile(
		scraper.PrimaryRecord{
			Name: "ボールペン", Unit: "1個(12)", Barcode: "4901234567894",
			Price: "1,000", URL: "https://www.askul.co.jp/p/1/",
		},
		matched(scraper.SecondaryRecord{
			Name: "ボールペン 黒", Unit: "1個(12)", MultiUnit: []string{"1個(12)", "6個(72)"},
			Price: "1,120", Identifier: "123",
		}),
	)

	vals := row.Values("￥")
	require.Len(t, vals, len(Columns))
	assert.Equal(t, []string{
		"ボールペン", "1個(12)", "4901234567894", "https://www.askul.co.jp/p/1/", "￥1,000", "", "", "同類商品",
		"ボールペン 黒", "1個(12)", "1個(12), 6個(72)", "123", "￥1,120", "", "", "https://www.ntps-shop.com/product/123/",
		"", "+120", "高い",
	}, vals)
}

func TestFormattedDelta(t *testing.T) {
	assert.Equal(t, "", ReconciledRow{}.FormattedDelta())
	assert.Equal(t, "-100", ReconciledRow{PriceDelta: intPtr(-100)}.FormattedDelta())
	assert.Equal(t, "0", ReconciledRow{PriceDelta: intPtr(0)}.FormattedDelta())
	assert.Equal(t, "+5", ReconciledRow{PriceDelta: intPtr(5)}.FormattedDelta())
}
