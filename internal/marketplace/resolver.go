// Package marketplace resolves Wildberries product references (URLs or bare
// numeric ids) to a current product name and price.
package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/logger"
)

// ErrUnresolvable means the reference yields no product identifier or every
// upstream strategy failed. Callers should treat it as "try again next
// cycle", never as fatal.
var ErrUnresolvable = errors.New("reference could not be resolved")

// errNoResult marks a strategy that produced no usable result; the chain
// moves on to the next one.
var errNoResult = errors.New("no usable result")

// fallbackName is used when upstream omits the product name.
const fallbackName = "Неизвестный товар"

// ProductInfo is a resolved (name, price) pair. Price is in rubles.
type ProductInfo struct {
	Name  string
	Price decimal.Decimal
}

// strategy is a single way of obtaining product info from upstream. Any
// error it returns is treated as "no result from this strategy".
type strategy interface {
	Name() string
	Fetch(ctx context.Context, productID int64) (*ProductInfo, error)
}

// Options configures a Resolver.
type Options struct {
	Timeout      time.Duration // Per-request timeout; defaults to 15 s
	ProxyURL     string        // Optional outbound proxy for every call
	HTMLFallback bool          // Append the product-page HTML strategy
}

// Resolver tries an ordered list of upstream strategies, first usable result
// wins.
type Resolver struct {
	client     *http.Client
	strategies []strategy
}

// NewResolver creates a resolver with the default strategy chain:
// cards v2 API, legacy cards API, then the static basket assets.
func NewResolver(opts Options) *Resolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.ProxyURL != "" {
		if proxyURL, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			logger.Warn("invalid proxy URL, using direct connections", "proxy", opts.ProxyURL)
		}
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}

	strategies := []strategy{
		newCardsV2Strategy(client, defaultCardAPIBase),
		newCardsV1Strategy(client, defaultCardAPIBase),
		newBasketStrategy(client, defaultBasketHostPattern),
	}
	if opts.HTMLFallback {
		strategies = append(strategies, newPageStrategy(client, defaultSiteBase))
	}

	return &Resolver{
		client:     client,
		strategies: strategies,
	}
}

// Resolve turns a reference into the product's current name and price.
// Returns ErrUnresolvable when no identifier can be extracted or every
// strategy fails; no other error crosses this boundary.
func (r *Resolver) Resolve(ctx context.Context, reference string) (*ProductInfo, error) {
	productID, ok := ExtractProductID(reference)
	if !ok {
		return nil, ErrUnresolvable
	}

	log := logger.FromContext(ctx)
	for _, s := range r.strategies {
		info, err := s.Fetch(ctx, productID)
		if err != nil {
			log.Debug("resolution strategy failed",
				"strategy", s.Name(),
				"product_ref", productID,
				"error", err.Error(),
			)
			continue
		}
		return info, nil
	}

	return nil, ErrUnresolvable
}

// Known URL path shapes carrying the numeric product id.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/catalog/(\d+)/detail\.aspx`),
	regexp.MustCompile(`/catalog/(\d+)/?$`),
	regexp.MustCompile(`/catalog/(\d+)/(?:[^/]+/)*$`),
	regexp.MustCompile(`/product/(\d+)/`),
	regexp.MustCompile(`card/(\d+)`),
	regexp.MustCompile(`(\d+)\.html`),
}

// ExtractProductID parses a reference and returns the marketplace product
// id. Accepts a bare numeric string, the known URL path shapes, or an id
// carried in the "nm" query parameter. Extraction is total: unsupported
// shapes yield ok=false without error.
func ExtractProductID(reference string) (int64, bool) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return 0, false
	}

	if id, err := strconv.ParseInt(reference, 10, 64); err == nil {
		return id, true
	}

	if id, ok := matchIDPatterns(reference); ok {
		return id, true
	}

	parsed, err := url.Parse(reference)
	if err != nil {
		return 0, false
	}

	// Retry the path patterns without query noise
	if id, ok := matchIDPatterns(parsed.Path); ok {
		return id, true
	}

	if nm := parsed.Query().Get("nm"); nm != "" {
		if id, err := strconv.ParseInt(nm, 10, 64); err == nil {
			return id, true
		}
	}

	return 0, false
}

func matchIDPatterns(s string) (int64, bool) {
	for _, pattern := range idPatterns {
		match := pattern.FindStringSubmatch(s)
		if len(match) < 2 {
			continue
		}
		if id, err := strconv.ParseInt(match[1], 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

// BelongsToMarketplace reports whether a reference points at the supported
// marketplace. Bare numeric ids are accepted as-is.
func BelongsToMarketplace(reference string) bool {
	reference = strings.TrimSpace(reference)
	if _, err := strconv.ParseInt(reference, 10, 64); err == nil {
		return true
	}
	return strings.Contains(reference, "wildberries.ru") || strings.Contains(reference, "wb.ru")
}
