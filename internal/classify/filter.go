package classify

import (
	"net/url"
	"strings"
)

// URIFilter decides whether a metadata record's uri is accepted.
type URIFilter func(uri string) bool

// DefaultURIMarker identifies permanent-storage hosted metadata.
const DefaultURIMarker = "arweave"

// parseHTTP returns the parsed uri when it is an absolute http or https URL
// with a host. The input first goes through normalizeHTTP so that it agrees
// with browser URL parsing on the common edge cases. Remaining differences:
// hosts are not IDNA-mapped or percent-decoded, and numeric IPv4 shorthand
// ("http://0x7f.1") is not expanded.
func parseHTTP(uri string) (*url.URL, bool) {
	u, err := url.Parse(normalizeHTTP(uri))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	return u, true
}

var stripTabNewline = strings.NewReplacer("\t", "", "\n", "", "\r", "")

// normalizeHTTP trims leading and trailing C0 controls and spaces, drops
// tabs and newlines, and for http(s) reads backslashes before the query as
// slashes and collapses the slashes after the scheme to "//".
func normalizeHTTP(uri string) string {
	uri = strings.TrimFunc(uri, func(r rune) bool { return r <= ' ' })
	uri = stripTabNewline.Replace(uri)

	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok {
		return uri
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
	default:
		return uri
	}

	head, tail := rest, ""
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		head, tail = rest[:i], rest[i:]
	}
	head = strings.ReplaceAll(head, `\`, "/")
	return scheme + "://" + strings.TrimLeft(head, "/") + tail
}

// SubstringFilter accepts http(s) URLs containing marker anywhere. Any URL
// that mentions marker in its path or query passes as well, so the check is
// easy to satisfy on purpose; use HostFilter for a host-only match.
func SubstringFilter(marker string) URIFilter {
	return func(uri string) bool {
		if _, ok := parseHTTP(uri); !ok {
			return false
		}
		return strings.Contains(uri, marker)
	}
}

// HostFilter accepts http(s) URLs whose host contains marker.
func HostFilter(marker string) URIFilter {
	return func(uri string) bool {
		u, ok := parseHTTP(uri)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(u.Hostname()), strings.ToLower(marker))
	}
}

// NoFilter accepts every uri.
func NoFilter(string) bool { return true }
