// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds sitemap.xml and robots.txt for the public part of
// the blog.
package seo

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// MaxURLs is the sitemap protocol limit for a single file.
const MaxURLs = 50000

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequency values used by the blog.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapPost is a publicly visible post.
type SitemapPost struct {
	ID      int64
	PubDate time.Time
}

// SitemapCategory is a published category.
type SitemapCategory struct {
	Slug      string
	CreatedAt time.Time
}

// SitemapBuilder collects URLs and renders the sitemap. It stops adding
// entries once MaxURLs is reached.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder for siteURL, e.g. "https://blog.example".
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimSuffix(siteURL, "/")}
}

func (b *SitemapBuilder) add(u SitemapURL) {
	if len(b.urls) < MaxURLs {
		b.urls = append(b.urls, u)
	}
}

// AddHomepage adds the post index.
func (b *SitemapBuilder) AddHomepage() {
	b.add(SitemapURL{Loc: b.siteURL + "/", ChangeFreq: ChangeFreqDaily, Priority: "1.0"})
}

// AddStaticPage adds a page such as /pages/about/.
func (b *SitemapBuilder) AddStaticPage(path string) {
	b.add(SitemapURL{Loc: b.siteURL + path, ChangeFreq: ChangeFreqMonthly, Priority: "0.3"})
}

// AddCategory adds a category listing.
func (b *SitemapBuilder) AddCategory(c SitemapCategory) {
	b.add(SitemapURL{
		Loc:        b.siteURL + "/category/" + c.Slug + "/",
		LastMod:    lastMod(c.CreatedAt),
		ChangeFreq: ChangeFreqDaily,
		Priority:   "0.6",
	})
}

// AddPost adds a post detail page.
func (b *SitemapBuilder) AddPost(p SitemapPost) {
	b.add(SitemapURL{
		Loc:        b.siteURL + "/posts/" + strconv.FormatInt(p.ID, 10) + "/",
		LastMod:    lastMod(p.PubDate),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.8",
	})
}

// Len returns the number of collected URLs.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	xmlBytes, err := xml.MarshalIndent(Sitemap{XMLNS: XMLNamespace, URLs: b.urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), xmlBytes...), nil
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
