// Package classifier assigns URL matches to domain groups.
package classifier

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/btraven00/urlsort/pkg/domains"
)

const (
	escapedSlash = `\/`
	wwwPrefix    = "www."
)

// Registry is the set of groups a classifier can assign to.
type Registry interface {
	Has(name string) bool
}

// Options controls normalization of matches before lookup.
type Options struct {
	// UnescapeSlashes replaces every `\/` in a match with "/".
	UnescapeSlashes bool `json:"unescape_slashes"`
	// CollapseSubdomains groups hosts by registrable domain (label + public suffix).
	CollapseSubdomains bool `json:"collapse_subdomains"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		UnescapeSlashes:    true,
		CollapseSubdomains: false,
	}
}

// Entry is a classified match.
type Entry struct {
	Group string `json:"group"`
	Text  string `json:"text"`
	Host  string `json:"host"`
}

// Classifier maps raw matches to registry groups. It performs no I/O.
type Classifier struct {
	registry Registry
	options  Options
}

// New creates a classifier over registry.
func New(registry Registry, options Options) *Classifier {
	return &Classifier{
		registry: registry,
		options:  options,
	}
}

// Classify normalizes raw and picks its group, falling back to domains.Unknown.
func (c *Classifier) Classify(raw string) Entry {
	text := raw
	if c.options.UnescapeSlashes {
		text = strings.ReplaceAll(text, escapedSlash, "/")
	}

	host := Host(text)
	candidate := StripWWW(host)
	if c.options.CollapseSubdomains {
		candidate = Registrable(host)
	}

	group := domains.Unknown
	if candidate != "" && c.registry.Has(candidate) {
		group = candidate
	}

	return Entry{
		Group: group,
		Text:  text,
		Host:  host,
	}
}

// Host returns the lowercased host of a URL-shaped string: the authority between the
// scheme separator and the first path separator, without a port.
func Host(text string) string {
	rest := text
	if i := strings.Index(rest, ":"); i >= 0 && hasSchemeSeparator(rest[i+1:]) {
		rest = trimSchemeSeparator(rest[i+1:])
	}

	if i := strings.IndexAny(rest, `/\?#`); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		rest = rest[:i]
	}

	return strings.ToLower(rest)
}

// StripWWW removes one literal leading "www." from host.
func StripWWW(host string) string {
	return strings.TrimPrefix(host, wwwPrefix)
}

// Registrable returns the registrable domain of host, e.g. "example.co.uk" for
// "blog.news.example.co.uk". Only the ICANN section of the public suffix list counts,
// so "foo.blogspot.com" gives "blogspot.com". Hosts without a registrable domain,
// such as bare public suffixes or IP addresses, fall back to StripWWW.
func Registrable(host string) string {
	host = strings.TrimSuffix(host, ".")
	if net.ParseIP(host) != nil {
		return host
	}

	suffix := icannSuffix(host)
	if len(suffix) >= len(host) {
		return StripWWW(host)
	}

	rest := strings.TrimSuffix(host[:len(host)-len(suffix)], ".")
	if rest == "" {
		return StripWWW(host)
	}

	return rest[strings.LastIndex(rest, ".")+1:] + "." + suffix
}

// icannSuffix is publicsuffix.PublicSuffix with private entries skipped.
func icannSuffix(host string) string {
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann {
		i := strings.IndexByte(suffix, '.')
		if i < 0 {
			break
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[i+1:])
	}

	return suffix
}

func hasSchemeSeparator(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, `\/\/`) ||
		strings.HasPrefix(s, `/\/`) || strings.HasPrefix(s, `\//`)
}

func trimSchemeSeparator(s string) string {
	for i := 0; i < 2; i++ {
		s = strings.TrimPrefix(s, `\`)
		s = strings.TrimPrefix(s, "/")
	}

	return s
}
