package scan

import (
	"net/url"
	"strings"
)

// Kind tags a classification result.
type Kind int

const (
	KindInvalid Kind = iota
	KindDirectAudio
	KindCatalogReference
)

func (k Kind) String() string {
	switch k {
	case KindDirectAudio:
		return "directAudio"
	case KindCatalogReference:
		return "catalogReference"
	default:
		return "invalid"
	}
}

// Reason explains why a result is invalid.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotURL
	ReasonNotAudio
)

// Result is the outcome of classifying one scanned or entered string.
// Only the fields relevant to Kind are populated.
type Result struct {
	Kind        Kind
	Raw         string
	URL         string
	ReferenceID string
	Reason      Reason
}

// DefaultPrefixes lists the reserved short-form path prefixes of card URLs.
var DefaultPrefixes = []string{"/qr/am/", "/ar/am/"}

// Classifier categorizes raw input. The zero value uses DefaultPrefixes.
type Classifier struct {
	Prefixes []string
}

// Classify categorizes text using the default short-form prefixes.
func Classify(text string) Result {
	return Classifier{}.Classify(text)
}

// Classify never fails; malformed input yields KindInvalid.
func (c Classifier) Classify(text string) Result {
	u, ok := parseAbsolute(text)
	if !ok {
		return Result{Kind: KindInvalid, Raw: text, Reason: ReasonNotURL}
	}
	link := strings.TrimSpace(text)
	if id, ok := c.referenceID(u); ok {
		return Result{Kind: KindCatalogReference, Raw: text, URL: link, ReferenceID: id}
	}
	if strings.Contains(link, "http") {
		return Result{Kind: KindDirectAudio, Raw: text, URL: link}
	}
	return Result{Kind: KindInvalid, Raw: text, Reason: ReasonNotAudio}
}

// IsShortForm reports whether text is a URL whose path carries a reserved prefix.
func (c Classifier) IsShortForm(text string) bool {
	u, ok := parseAbsolute(text)
	if !ok {
		return false
	}
	_, ok = c.referenceID(u)
	return ok
}

func (c Classifier) prefixes() []string {
	if len(c.Prefixes) == 0 {
		return DefaultPrefixes
	}
	return c.Prefixes
}

func (c Classifier) referenceID(u *url.URL) (string, bool) {
	path := u.EscapedPath()
	for _, prefix := range c.prefixes() {
		if strings.HasPrefix(path, prefix) {
			id := strings.TrimPrefix(path, prefix)
			if raw, err := url.PathUnescape(id); err == nil {
				id = raw
			}
			return id, true
		}
	}
	return "", false
}

// parseAbsolute accepts what a browser URL constructor accepts: a scheme is
// required, and hierarchical web schemes also need a host.
func parseAbsolute(text string) (*url.URL, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	u, err := url.Parse(text)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss", "ftp":
		if u.Host == "" {
			return nil, false
		}
	}
	if u.Opaque == "" && u.Host == "" && u.Path == "" {
		return nil, false
	}
	return u, true
}
