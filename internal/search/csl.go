// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string   `yaml:"id"`
	Type           string   `yaml:"type"`
	Title          string   `yaml:"title"`
	URL            string   `yaml:"URL"`
	ContainerTitle string   `yaml:"container-title,omitempty"`
	Abstract       string   `yaml:"abstract,omitempty"`
	Accessed       *CSLDate `yaml:"accessed,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// abstractLimit bounds the content excerpt carried into each entry.
const abstractLimit = 300

// FormatCSL writes sources as a CSL-YAML list to w. Sources sharing a URL
// are listed once, in first-seen order. Entry ids are "source-N" matching
// the citation numbers used in reports.
func FormatCSL(sources []types.Source, accessed time.Time, w io.Writer) error {
	seen := make(map[string]bool, len(sources))
	items := make([]CSLItem, 0, len(sources))
	for _, s := range sources {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		items = append(items, toCSLItem(len(items)+1, s, accessed))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(n int, s types.Source, accessed time.Time) CSLItem {
	item := CSLItem{
		ID:       fmt.Sprintf("source-%d", n),
		Type:     "webpage",
		Title:    s.Title,
		URL:      s.URL,
		Abstract: excerpt(s.Content, abstractLimit),
	}
	if s.SourceType == "news" {
		item.Type = "article-newspaper"
	}
	if item.Title == "" {
		item.Title = s.URL
	}
	if u, err := url.Parse(s.URL); err == nil && u.Host != "" {
		item.ContainerTitle = strings.TrimPrefix(u.Host, "www.")
	}
	if !accessed.IsZero() {
		item.Accessed = &CSLDate{
			DateParts: [][]int{{accessed.Year(), int(accessed.Month()), accessed.Day()}},
		}
	}
	return item
}

// excerpt returns s cut to at most n runes on a word boundary.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
