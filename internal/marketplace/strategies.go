package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shoptrack/backend/pkg/money"
)

// Production endpoints. Strategy constructors take the bases as arguments so
// tests can point them at a local server.
const (
	defaultCardAPIBase       = "https://card.wb.ru"
	defaultBasketHostPattern = "https://basket-%02d.wb.ru"
	defaultSiteBase          = "https://www.wildberries.ru"
)

// basketMirrors is how many mirror hosts the basket strategy tries before
// giving up.
const basketMirrors = 5

// getJSON fetches a URL and decodes the JSON body into v. Non-200 statuses
// and malformed payloads are returned as errors.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Referer", defaultSiteBase+"/")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching JSON: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

// Card API payloads. Prices are in kopecks.
type cardsResponse struct {
	Data struct {
		Products []cardProduct `json:"products"`
	} `json:"data"`
}

type cardProduct struct {
	Name       string     `json:"name"`
	SalePriceU *int64     `json:"salePriceU"`
	PriceU     *int64     `json:"priceU"`
	Sizes      []cardSize `json:"sizes"`
}

type cardSize struct {
	Price *struct {
		Product *int64 `json:"product"`
	} `json:"price"`
}

// firstSizePrice returns the first per-variant price found, if any.
func (p *cardProduct) firstSizePrice() *int64 {
	for _, size := range p.Sizes {
		if size.Price != nil && size.Price.Product != nil {
			return size.Price.Product
		}
	}
	return nil
}

func (p *cardProduct) displayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fallbackName
}

// --- Cards v2 API ---

type cardsV2Strategy struct {
	client  *http.Client
	baseURL string
}

func newCardsV2Strategy(client *http.Client, baseURL string) strategy {
	return &cardsV2Strategy{client: client, baseURL: baseURL}
}

func (s *cardsV2Strategy) Name() string { return "cards_v2" }

// Fetch queries the richer v2 schema: discounted price first, then base
// price, then the first per-variant price.
func (s *cardsV2Strategy) Fetch(ctx context.Context, productID int64) (*ProductInfo, error) {
	url := fmt.Sprintf("%s/cards/v2/detail?appType=1&curr=rub&dest=-1257786&spp=0&nm=%d", s.baseURL, productID)

	var payload cardsResponse
	if err := getJSON(ctx, s.client, url, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data.Products) == 0 {
		return nil, errNoResult
	}

	product := payload.Data.Products[0]

	var kopecks *int64
	switch {
	case product.SalePriceU != nil:
		kopecks = product.SalePriceU
	case product.PriceU != nil:
		kopecks = product.PriceU
	default:
		kopecks = product.firstSizePrice()
	}
	if kopecks == nil {
		return nil, errNoResult
	}

	return &ProductInfo{
		Name:  product.displayName(),
		Price: money.FromMinorUnits(*kopecks),
	}, nil
}

// --- Legacy cards API ---

type cardsV1Strategy struct {
	client  *http.Client
	baseURL string
}

func newCardsV1Strategy(client *http.Client, baseURL string) strategy {
	return &cardsV1Strategy{client: client, baseURL: baseURL}
}

func (s *cardsV1Strategy) Name() string { return "cards_v1" }

// Fetch queries the narrower legacy schema, which only carries per-variant
// pricing.
func (s *cardsV1Strategy) Fetch(ctx context.Context, productID int64) (*ProductInfo, error) {
	url := fmt.Sprintf("%s/cards/detail?nm=%d", s.baseURL, productID)

	var payload cardsResponse
	if err := getJSON(ctx, s.client, url, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data.Products) == 0 {
		return nil, errNoResult
	}

	product := payload.Data.Products[0]
	kopecks := product.firstSizePrice()
	if kopecks == nil {
		return nil, errNoResult
	}

	return &ProductInfo{
		Name:  product.displayName(),
		Price: money.FromMinorUnits(*kopecks),
	}, nil
}

// --- Static basket assets ---

type basketCard struct {
	ImtName    string `json:"imt_name"`
	SubjName   string `json:"subj_name"`
	SalePriceU *int64 `json:"salePriceU"`
	PriceU     *int64 `json:"priceU"`
	Price      *int64 `json:"price"`
}

type basketStrategy struct {
	client      *http.Client
	hostPattern string // fmt pattern with one %02d mirror index
}

func newBasketStrategy(client *http.Client, hostPattern string) strategy {
	return &basketStrategy{client: client, hostPattern: hostPattern}
}

func (s *basketStrategy) Name() string { return "basket" }

// Fetch reads the static card.json asset. The asset location is derived from
// the product id (vol = id/100000, part = id/1000) and replicated across a
// pool of mirror hosts; mirrors are tried in order until one responds.
func (s *basketStrategy) Fetch(ctx context.Context, productID int64) (*ProductInfo, error) {
	vol := productID / 100000
	part := productID / 1000

	for mirror := 1; mirror <= basketMirrors; mirror++ {
		host := fmt.Sprintf(s.hostPattern, mirror)
		url := fmt.Sprintf("%s/vol%d/part%d/%d/info/ru/card.json", host, vol, part, productID)

		var card basketCard
		if err := getJSON(ctx, s.client, url, &card); err != nil {
			continue
		}

		name := card.ImtName
		if name == "" {
			name = card.SubjName
		}
		if name == "" {
			name = fallbackName
		}

		var kopecks *int64
		switch {
		case card.SalePriceU != nil:
			kopecks = card.SalePriceU
		case card.PriceU != nil:
			kopecks = card.PriceU
		case card.Price != nil:
			kopecks = card.Price
		}
		if kopecks == nil {
			continue
		}

		return &ProductInfo{
			Name:  name,
			Price: money.FromMinorUnits(*kopecks),
		}, nil
	}

	return nil, errNoResult
}
