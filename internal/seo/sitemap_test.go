// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestSitemapBuilder(t *testing.T) {
	b := NewSitemapBuilder("https://blog.example/")
	b.AddHomepage()
	b.AddStaticPage("/pages/about/")
	b.AddCategory(SitemapCategory{Slug: "travel", CreatedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)})
	b.AddPost(SitemapPost{ID: 42, PubDate: time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)})
	b.AddPost(SitemapPost{ID: 43})

	tests := []struct {
		loc      string
		lastMod  string
		priority string
	}{
		{"https://blog.example/", "", "1.0"},
		{"https://blog.example/pages/about/", "", "0.3"},
		{"https://blog.example/category/travel/", "2025-01-15T10:00:00Z", "0.6"},
		{"https://blog.example/posts/42/", "2025-02-01T08:30:00Z", "0.8"},
		{"https://blog.example/posts/43/", "", "0.8"},
	}
	if b.Len() != len(tests) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(tests))
	}
	for i, tt := range tests {
		got := b.urls[i]
		if got.Loc != tt.loc {
			t.Errorf("url %d Loc = %q, want %q", i, got.Loc, tt.loc)
		}
		if got.LastMod != tt.lastMod {
			t.Errorf("url %d LastMod = %q, want %q", i, got.LastMod, tt.lastMod)
		}
		if got.Priority != tt.priority {
			t.Errorf("url %d Priority = %q, want %q", i, got.Priority, tt.priority)
		}
	}
}

func TestSitemapBuilderBuild(t *testing.T) {
	b := NewSitemapBuilder("https://blog.example")
	b.AddHomepage()
	b.AddPost(SitemapPost{ID: 1})

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing XML header: %q", s[:40])
	}
	if !strings.Contains(s, `<urlset xmlns="`+XMLNamespace+`">`) {
		t.Error("missing urlset namespace")
	}

	var parsed Sitemap
	if err := xml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if len(parsed.URLs) != 2 {
		t.Errorf("parsed %d urls, want 2", len(parsed.URLs))
	}
}

func TestSitemapBuilderEmptyBuild(t *testing.T) {
	out, err := NewSitemapBuilder("https://blog.example").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(string(out), "urlset") {
		t.Errorf("empty sitemap should still have a urlset: %s", out)
	}
}

func TestSitemapBuilderLimit(t *testing.T) {
	b := NewSitemapBuilder("https://blog.example")
	for i := range MaxURLs + 10 {
		b.AddPost(SitemapPost{ID: int64(i)})
	}
	if b.Len() != MaxURLs {
		t.Errorf("Len() = %d, want %d", b.Len(), MaxURLs)
	}
}
