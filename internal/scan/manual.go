package scan

import (
	"net/url"
	"strings"
)

// Rejection names the manual-entry gate that refused an input.
type Rejection string

const (
	RejectNone        Rejection = ""
	RejectEmpty       Rejection = "enterUrl"
	RejectFormat      Rejection = "invalidUrlFormat"
	RejectScheme      Rejection = "httpsOnly"
	RejectCatalogOnly Rejection = "catalogOnly"
)

// CheckManual runs the manual-entry gates in order: empty, format, scheme,
// catalog membership. Free-text entry only accepts card short-form URLs, unlike
// the scan path which also takes direct audio links.
func (c Classifier) CheckManual(text string) (Result, Rejection) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Kind: KindInvalid, Raw: text, Reason: ReasonNotURL}, RejectEmpty
	}
	u, ok := parseAbsolute(trimmed)
	if !ok {
		return Result{Kind: KindInvalid, Raw: text, Reason: ReasonNotURL}, RejectFormat
	}
	if !isHTTPS(u) {
		return Result{Kind: KindInvalid, Raw: text, Reason: ReasonNotAudio}, RejectScheme
	}
	res := c.Classify(trimmed)
	if res.Kind != KindCatalogReference {
		return Result{Kind: KindInvalid, Raw: text, Reason: ReasonNotAudio}, RejectCatalogOnly
	}
	return res, RejectNone
}

// CheckManual runs the manual-entry gates with the default prefixes.
func CheckManual(text string) (Result, Rejection) {
	return Classifier{}.CheckManual(text)
}

func isHTTPS(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, "https")
}
