package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haku-324897/askul-navilion/pkg/session"
)

// primary page with dedicated price element and "label：value" text.
const primaryInlinePage = `<!DOCTYPE html>
<html lang="ja">
	<head><title>コピー用紙 A4 500枚 - アスクル</title></head>
	<body>
		<div class="item-price">
			<span class="item-price-taxin">￥2,980</span>
		</div>
		<ul class="item-detail">
			<li>販売単位：1箱（5冊入）</li>
			<li>JANコード：4901234567894</li>
		</ul>
	</body>
</html>`

// primary page where unit and barcode only appear in a detail table and the
// price only in free text.
const primaryTablePage = `<!DOCTYPE html>
<html lang="ja">
	<head><title>ボールペン 黒 10本 - アスクル</title>
	<script>var price = "￥99999";</script></head>
	<body>
		<p class="campaign">おすすめ</p>
		<p>￥1,100 （税込）</p>
		<table class="item-detail-table">
			<tr><th>メーカー</th><td>ACME</td></tr>
			<tr><th>販売単位</th><td> 1箱 (10本) </td></tr>
			<tr><th>JANコード</th><td>4-901234-000017</td></tr>
		</table>
	</body>
</html>`

// primary page with a definition list.
const primaryDefinitionListPage = `<!DOCTYPE html>
<html lang="ja">
	<head><title>ゴミ袋 45L</title></head>
	<body>
		<span class="item-price-value">880</span>
		<dl>
			<dt>販売単位</dt><dd>1袋（50枚）</dd>
			<dt>JANコード</dt><dd>JAN 4900000000001</dd>
		</dl>
	</body>
</html>`

// primary page whose barcode heading carries a digit count that is not the
// barcode itself.
const primaryAnnotatedHeadingPage = `<!DOCTYPE html>
<html lang="ja">
	<head><title>クリアファイル A4 - アスクル</title></head>
	<body>
		<span class="item-price-value">￥330</span>
		<table>
			<tr><th>販売単位</th><td>1パック（10枚）</td></tr>
			<tr><th>JANコード（13桁）</th><td>4901234567894</td></tr>
		</table>
	</body>
</html>`

const primaryNotFoundPage = `<!DOCTYPE html>
<html><head><title>Not Found</title></head><body><p>ページが見つかりません</p></body></html>`

const searchResultsTablePage = `<!DOCTYPE html>
<html lang="ja">
	<body>
		<table>
			<tr>
				<td class="tano-center"><a href="/product/123456/?ref=search">コピー用紙</a></td>
				<td class="tano-center"><a href="/product/999999/">別商品</a></td>
			</tr>
		</table>
	</body>
</html>`

const searchResultsDetailPage = `<!DOCTYPE html>
<html lang="ja">
	<body>
		<div class="tano-item-detail-right">
			<a class="tano-item-name" href="https://www.ntps-shop.com/product/777/">ボールペン</a>
		</div>
	</body>
</html>`

const searchResultsEmptyPage = `<!DOCTYPE html>
<html lang="ja"><body><p>該当する商品が見つかりませんでした。</p></body></html>`

const secondaryProductPage = `<!DOCTYPE html>
<html lang="ja">
	<body>
		<h1 id="tano-h1"><span>コピー用紙　A4
			500枚</span></h1>
		<span id="tano-sale-price"><span>2,750</span></span>
		<dl class="tano-product-stock-left">
			<dt>在庫</dt><dd>あり</dd>
			<dt>販売単位</dt><dd>1箱(5冊入)</dd>
		</dl>
	</body>
</html>`

const secondaryVariationPage = `<!DOCTYPE html>
<html lang="ja">
	<body>
		<section class="entry-content"><h1><span> ボールペン 黒 </span></h1></section>
		<span id="tano-sale-price"><span>￥1,050</span></span>
		<table>
			<tr><th>カラー</th><td class="tano-d-sh-variation-list"><label>黒</label><label>赤</label></td></tr>
			<tr><th>入数</th>
				<td class="tano-d-sh-variation-list">
					<label>12個(144)</label>
					<label> </label>
					<label>1個(12)</label>
					<label>6個(72)</label>
				</td>
			</tr>
			<tr><th>個数</th><td class="tano-d-sh-variation-list"><label>99個</label></td></tr>
		</table>
	</body>
</html>`

// fakeFetcher serves canned bodies by URL and records requested URLs.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	calls   []string
	headers map[string]string
}

func (f *fakeFetcher) Get(_ context.Context, url string) (*session.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: 404 %s", session.ErrHTTPStatus, url)
	}
	return &session.Page{URL: url, StatusCode: http.StatusOK, Body: []byte(body), Encoding: "utf-8"}, nil
}

func (f *fakeFetcher) SetHeader(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headers == nil {
		f.headers = map[string]string{}
	}
	f.headers[key] = value
}

func (f *fakeFetcher) Handshake(ctx context.Context, url string) error {
	_, err := f.Get(ctx, url)
	return err
}

func newTestSecondaryConfig(base string) SecondaryConfig {
	return SecondaryConfig{
		BaseURL:            base,
		LandingURL:         base + "/shop/wellstech/",
		SearchURLTemplate:  base + "/search/res/{barcode}/",
		ProductURLTemplate: base + "/product/{code}/",
		UserAgent:          "pricecheck-test",
	}
}

// newTestServer serves both catalogs from one mux.
func newTestServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Config{}, nil)
	require.NoError(t, err)
	return s
}
