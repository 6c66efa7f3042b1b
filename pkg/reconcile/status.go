package reconcile

// MatchStatus says how confidently a wholesaler record was identified for a
// primary record.
type MatchStatus int

const (
	// StatusNoBarcode: the primary page had no barcode, nothing was searched.
	StatusNoBarcode MatchStatus = iota
	// StatusNoCandidate: the barcode search found no product; the search
	// page is linked for manual review.
	StatusNoCandidate
	StatusConfirmedMatch
	StatusExtractionFailed
	StatusURLPatternMismatch
)

func (s MatchStatus) String() string {
	switch s {
	case StatusNoBarcode:
		return "no-barcode"
	case StatusNoCandidate:
		return "no-candidate"
	case StatusConfirmedMatch:
		return "confirmed-match"
	case StatusExtractionFailed:
		return "extraction-failed"
	case StatusURLPatternMismatch:
		return "url-pattern-mismatch"
	}
	return "unknown"
}

// Label is the text buyers see in the status column.
func (s MatchStatus) Label() string {
	switch s {
	case StatusNoBarcode:
		return "JANコードなし"
	case StatusNoCandidate:
		return "類似商品"
	case StatusConfirmedMatch:
		return "同類商品"
	case StatusExtractionFailed:
		return "情報取得失敗"
	case StatusURLPatternMismatch:
		return "URLパターン不一致"
	}
	return ""
}

// Judgment compares the wholesaler's price with the retailer's.
type Judgment int

const (
	Incomparable Judgment = iota
	Cheaper
	MoreExpensive
	Equal
)

func (j Judgment) String() string {
	switch j {
	case Cheaper:
		return "cheaper"
	case MoreExpensive:
		return "more-expensive"
	case Equal:
		return "equal"
	}
	return "incomparable"
}

// Label is the text buyers see in the judgment column.
func (j Judgment) Label() string {
	switch j {
	case Cheaper:
		return "安い"
	case MoreExpensive:
		return "高い"
	case Equal:
		return "同じ"
	}
	return ""
}
