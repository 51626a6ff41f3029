// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
)

func TestBuildRobots(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RobotsConfig
		contains []string
		excludes []string
	}{
		{
			name:     "production",
			cfg:      RobotsConfig{SiteURL: "https://blog.example/"},
			contains: []string{"User-agent: *", "Disallow: /auth/", "Disallow: /posts/create/", "Allow: /", "Sitemap: https://blog.example/sitemap.xml"},
			excludes: []string{"Disallow: /\n"},
		},
		{
			name:     "extra paths",
			cfg:      RobotsConfig{DisallowPaths: []string{"/media/"}},
			contains: []string{"Disallow: /media/", "Disallow: /auth/"},
			excludes: []string{"Sitemap:"},
		},
		{
			name:     "disallow all",
			cfg:      RobotsConfig{SiteURL: "https://blog.example", DisallowAll: true},
			contains: []string{"User-agent: *", "Disallow: /\n"},
			excludes: []string{"Allow: /", "Sitemap:", "/auth/"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildRobots(tt.cfg)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("robots.txt missing %q:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("robots.txt should not contain %q:\n%s", s, got)
				}
			}
		})
	}
}

func TestBuildRobotsDoesNotMutateDefaults(t *testing.T) {
	before := len(DefaultDisallowPaths)
	BuildRobots(RobotsConfig{DisallowPaths: []string{"/a", "/b"}})
	if len(DefaultDisallowPaths) != before {
		t.Errorf("DefaultDisallowPaths changed: %v", DefaultDisallowPaths)
	}
}
