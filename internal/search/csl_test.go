// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

var accessed = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func TestToCSLItemWebpage(t *testing.T) {
	s := types.Source{
		Title:   "Surface code thresholds",
		URL:     "https://www.example.org/qec/surface",
		Content: "Surface codes tolerate physical error rates near one percent.",
	}

	item := toCSLItem(3, s, accessed)

	if item.ID != "source-3" {
		t.Errorf("ID = %q, want %q", item.ID, "source-3")
	}
	if item.Type != "webpage" {
		t.Errorf("Type = %q, want %q", item.Type, "webpage")
	}
	if item.ContainerTitle != "example.org" {
		t.Errorf("ContainerTitle = %q, want %q", item.ContainerTitle, "example.org")
	}
	if item.Abstract != s.Content {
		t.Errorf("Abstract = %q, want %q", item.Abstract, s.Content)
	}
	if item.Accessed == nil || item.Accessed.DateParts[0][0] != 2026 || item.Accessed.DateParts[0][2] != 14 {
		t.Errorf("Accessed = %+v, want 2026-10-14", item.Accessed)
	}
}

func TestToCSLItemNews(t *testing.T) {
	item := toCSLItem(1, types.Source{URL: "https://news.example.com/a", Content: "c", SourceType: "news"}, time.Time{})
	if item.Type != "article-newspaper" {
		t.Errorf("Type = %q, want %q", item.Type, "article-newspaper")
	}
	if item.Title != "https://news.example.com/a" {
		t.Errorf("untitled source should fall back to URL, got %q", item.Title)
	}
	if item.Accessed != nil {
		t.Errorf("zero accessed time should omit the date, got %+v", item.Accessed)
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := excerpt(long, 30)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt should end with ellipsis, got %q", got)
	}
	if len([]rune(got)) > 33 {
		t.Errorf("excerpt too long: %d runes", len([]rune(got)))
	}
	if strings.Contains(got, "wor...") {
		t.Errorf("excerpt should cut on a word boundary, got %q", got)
	}
	if got := excerpt("  short\n text ", 30); got != "short text" {
		t.Errorf("excerpt(short) = %q, want %q", got, "short text")
	}
}

func TestFormatCSLDedupesByURL(t *testing.T) {
	sources := []types.Source{
		{Title: "A", URL: "https://a.example.com", Content: "first"},
		{Title: "B", URL: "https://b.example.com", Content: "second"},
		{Title: "A again", URL: "https://a.example.com", Content: "repeat"},
	}

	var buf bytes.Buffer
	if err := FormatCSL(sources, accessed, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}

	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != "source-1" || items[1].ID != "source-2" {
		t.Errorf("ids = %q, %q; want source-1, source-2", items[0].ID, items[1].ID)
	}
	if items[0].Title != "A" {
		t.Errorf("first-seen entry should win, got %q", items[0].Title)
	}
	if !strings.Contains(buf.String(), "URL: https://a.example.com") {
		t.Errorf("CSL output should use the upper-case URL key:\n%s", buf.String())
	}
}

func TestFormatCSLEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSL(nil, accessed, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty input = %q, want []", buf.String())
	}
}
