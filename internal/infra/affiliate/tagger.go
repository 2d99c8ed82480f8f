package affiliate

import (
	"net/url"
	"strings"
	"sync"
)

// defaultRetailers are the domain suffixes with an active affiliate
// program.
var defaultRetailers = []string{
	"amazon.com",
	"amazon.co.uk",
}

// Tagger rewrites product URLs for recognized retailers so purchases
// are attributed to the configured partner. URLs on other hosts pass
// through untouched.
type Tagger struct {
	mu        sync.RWMutex
	tag       string
	retailers []string
}

func New(tag string) *Tagger {
	return &Tagger{
		tag:       tag,
		retailers: defaultRetailers,
	}
}

// NewWithRetailers overrides the eligible domain suffixes.
func NewWithRetailers(tag string, retailers []string) *Tagger {
	return &Tagger{
		tag:       tag,
		retailers: retailers,
	}
}

// Tag appends the partner parameter when the URL's host belongs to an
// affiliate-eligible retailer. Not idempotent: callers tag each URL at
// most once.
func (t *Tagger) Tag(rawURL string) string {
	t.mu.RLock()
	tag := t.tag
	retailers := t.retailers
	t.mu.RUnlock()

	if tag == "" || !eligible(rawURL, retailers) {
		return rawURL
	}
	separator := "?"
	if strings.Contains(rawURL, "?") {
		separator = "&"
	}
	return rawURL + separator + "tag=" + tag
}

// Retag swaps the partner identifier, used on config reload.
func (t *Tagger) Retag(tag string) {
	t.mu.Lock()
	t.tag = tag
	t.mu.Unlock()
}

func eligible(rawURL string, retailers []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, suffix := range retailers {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
