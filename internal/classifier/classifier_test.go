package classifier

import (
	"testing"

	"github.com/btraven00/urlsort/pkg/domains"
)

func newTestRegistry(t *testing.T, names ...string) *domains.Registry {
	t.Helper()

	registry, err := domains.NewRegistry(names)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	return registry
}

func TestClassifier_Classify(t *testing.T) {
	registry := newTestRegistry(t, "example.com", "example.co.uk", "esc.example.net", "host.io", "blogspot.com")

	tests := []struct {
		name      string
		options   Options
		raw       string
		wantGroup string
		wantText  string
	}{
		{
			name:      "known host",
			options:   DefaultOptions(),
			raw:       "https://example.com/a",
			wantGroup: "example.com",
			wantText:  "https://example.com/a",
		},
		{
			name:      "unknown host",
			options:   DefaultOptions(),
			raw:       "https://other.org/b",
			wantGroup: domains.Unknown,
			wantText:  "https://other.org/b",
		},
		{
			name:      "bare www prefix is stripped",
			options:   DefaultOptions(),
			raw:       "www.example.com/path",
			wantGroup: "example.com",
			wantText:  "www.example.com/path",
		},
		{
			name:      "www after scheme is stripped",
			options:   DefaultOptions(),
			raw:       "http://www.example.com/x",
			wantGroup: "example.com",
			wantText:  "http://www.example.com/x",
		},
		{
			name:      "escaped slashes are unescaped",
			options:   DefaultOptions(),
			raw:       `http:\/\/esc.example.net\/p\/q`,
			wantGroup: "esc.example.net",
			wantText:  "http://esc.example.net/p/q",
		},
		{
			name:      "escaped slashes kept when disabled",
			options:   Options{UnescapeSlashes: false},
			raw:       `http:\/\/esc.example.net\/p\/q`,
			wantGroup: "esc.example.net",
			wantText:  `http:\/\/esc.example.net\/p\/q`,
		},
		{
			name:      "collapse skips private suffixes",
			options:   Options{UnescapeSlashes: true, CollapseSubdomains: true},
			raw:       "https://foo.blogspot.com/post",
			wantGroup: "blogspot.com",
			wantText:  "https://foo.blogspot.com/post",
		},
		{
			name:      "port is ignored",
			options:   DefaultOptions(),
			raw:       "https://host.io:8080/x",
			wantGroup: "host.io",
			wantText:  "https://host.io:8080/x",
		},
		{
			name:      "host case is ignored",
			options:   DefaultOptions(),
			raw:       "https://EXAMPLE.com/Path",
			wantGroup: "example.com",
			wantText:  "https://EXAMPLE.com/Path",
		},
		{
			name:      "subdomain without collapsing",
			options:   DefaultOptions(),
			raw:       "https://blog.news.example.co.uk/post",
			wantGroup: domains.Unknown,
			wantText:  "https://blog.news.example.co.uk/post",
		},
		{
			name:      "subdomain collapsed to registrable domain",
			options:   Options{UnescapeSlashes: true, CollapseSubdomains: true},
			raw:       "https://blog.news.example.co.uk/post",
			wantGroup: "example.co.uk",
			wantText:  "https://blog.news.example.co.uk/post",
		},
		{
			name:      "collapsing www host",
			options:   Options{CollapseSubdomains: true},
			raw:       "www.example.com/path",
			wantGroup: "example.com",
			wantText:  "www.example.com/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := New(registry, tt.options).Classify(tt.raw)
			if entry.Group != tt.wantGroup {
				t.Errorf("Group = %q, want %q", entry.Group, tt.wantGroup)
			}
			if entry.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", entry.Text, tt.wantText)
			}
		})
	}
}

func TestHost(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "https://example.com/a", expected: "example.com"},
		{input: "www.example.com/path", expected: "www.example.com"},
		{input: "www.example.com:81/path", expected: "www.example.com"},
		{input: "http://host.io:8080/x", expected: "host.io"},
		{input: `https:\/\/esc.example.net\/p`, expected: "esc.example.net"},
		{input: `https:/\/half.example.net/p`, expected: "half.example.net"},
		{input: "https://user@example.com/p", expected: "example.com"},
		{input: "HTTPS://Example.COM/p", expected: "example.com"},
	}

	for _, tt := range tests {
		if got := Host(tt.input); got != tt.expected {
			t.Errorf("Host(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStripWWW_LiteralPrefixOnly(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{host: "www.example.com", expected: "example.com"},
		{host: "wwwx.example.com", expected: "wwwx.example.com"},
		{host: "web.example.com", expected: "web.example.com"},
		{host: "w.example.com", expected: "w.example.com"},
		{host: "www.www.example.com", expected: "www.example.com"},
		{host: "example.com", expected: "example.com"},
	}

	for _, tt := range tests {
		if got := StripWWW(tt.host); got != tt.expected {
			t.Errorf("StripWWW(%q) = %q, want %q", tt.host, got, tt.expected)
		}
	}
}

func TestRegistrable(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{host: "blog.news.example.co.uk", expected: "example.co.uk"},
		{host: "a.b.example.com", expected: "example.com"},
		{host: "example.com.", expected: "example.com"},
		{host: "localhost", expected: "localhost"},
		{host: "co.uk", expected: "co.uk"},
		{host: "foo.blogspot.com", expected: "blogspot.com"},
		{host: "x.github.io", expected: "github.io"},
		{host: "github.io", expected: "github.io"},
		{host: "a.b.localhost", expected: "b.localhost"},
		{host: "127.0.0.1", expected: "127.0.0.1"},
		{host: "www.example.com", expected: "example.com"},
	}

	for _, tt := range tests {
		if got := Registrable(tt.host); got != tt.expected {
			t.Errorf("Registrable(%q) = %q, want %q", tt.host, got, tt.expected)
		}
	}
}
