package scraper

import (
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/text/width"
)

var (
	closedParenNumberRegex = regexp.MustCompile(`[（(](\d+)[）)]`)
	openParenNumberRegex   = regexp.MustCompile(`[（(](\d+)`)
	firstNumberRegex       = regexp.MustCompile(`\d+`)
)

// ExtractNumber returns the quantity a pack-size label sorts by: a number in
// closed parentheses, else a number after an opening parenthesis, else the
// first number anywhere, else 0. "6本（12）" is 12 and "24個入" is 24.
func ExtractNumber(label string) int {
	s := width.Narrow.String(label)

	if m := closedParenNumberRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])
	}
	if m := openParenNumberRegex.FindStringSubmatch(s); m != nil {
		return atoi(m[1])
	}
	if m := firstNumberRegex.FindString(s); m != "" {
		return atoi(m)
	}
	return 0
}

// SortPackSizes returns labels ordered by ExtractNumber, smallest first.
// Labels with equal quantities keep their page order.
func SortPackSizes(labels []string) []string {
	if len(labels) < 2 {
		return labels
	}
	type keyed struct {
		label string
		n     int
	}
	ks := make([]keyed, len(labels))
	for i, l := range labels {
		ks[i] = keyed{l, ExtractNumber(l)}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].n < ks[j].n })

	sorted := make([]string, len(ks))
	for i, k := range ks {
		sorted[i] = k.label
	}
	return sorted
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
