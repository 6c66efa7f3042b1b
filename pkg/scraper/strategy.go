package scraper

// strategy extracts one field from a parsed page. An empty result means the
// strategy did not apply and the next one in the chain is tried.
type strategy struct {
	name    string
	extract func(*document) string
}

// chain is an ordered list of strategies for one field; order is the
// fallback order.
type chain []strategy

// apply returns the first non-empty value and the name of the strategy that
// produced it.
func (c chain) apply(d *document) (value, by string) {
	for _, s := range c {
		if v := s.extract(d); v != "" {
			return v, s.name
		}
	}
	return "", ""
}

func (c chain) names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.name
	}
	return names
}
