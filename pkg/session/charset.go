package session

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const utf8Name = "utf-8"

// decodeBody returns body as UTF-8 along with the name of the encoding it was
// read as. colly already transcodes bodies whose Content-Type names a
// charset, so only undeclared encodings are sniffed here.
func decodeBody(body []byte, contentType string) ([]byte, string, error) {
	if declared := declaredCharset(contentType); declared != "" {
		return body, declared, nil
	}
	if len(body) == 0 || utf8.Valid(body) {
		return body, utf8Name, nil
	}

	name := sniffCharset(body)
	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return nil, "", fmt.Errorf("unsupported charset %q", name)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return nil, "", fmt.Errorf("transcode from %s: %w", canonical, err)
	}
	return decoded, canonical, nil
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// sniffCharset guesses the encoding of an HTML body, falling back to the
// <meta> declaration scan of x/net/html/charset when chardet has no answer.
func sniffCharset(body []byte) string {
	if res, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && res.Charset != "" {
		return res.Charset
	}
	_, name, _ := charset.DetermineEncoding(body, "text/html")
	return name
}
