package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadQueries reads one product identifier or URL per line. Surrounding
// whitespace is trimmed and blank lines are skipped.
func LoadQueries(r io.Reader) ([]string, error) {
	var qs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), bom))
		if line == "" {
			continue
		}
		qs = append(qs, line)
	}
	if err := sc.Err(); err != nil {
		return qs, fmt.Errorf("read queries: %w", err)
	}
	return qs, nil
}

// LoadQueriesFromFile reads queries from path; "-" means stdin.
func LoadQueriesFromFile(path string) ([]string, error) {
	if path == "-" {
		return LoadQueries(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadQueries(f)
}
