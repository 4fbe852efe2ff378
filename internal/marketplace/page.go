package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// pageStrategy scrapes the server-rendered product page. It is an optional
// last resort behind the structured APIs and is disabled unless configured.
type pageStrategy struct {
	client  *http.Client
	baseURL string
}

func newPageStrategy(client *http.Client, baseURL string) strategy {
	return &pageStrategy{client: client, baseURL: baseURL}
}

func (s *pageStrategy) Name() string { return "page_html" }

func (s *pageStrategy) Fetch(ctx context.Context, productID int64) (*ProductInfo, error) {
	url := fmt.Sprintf("%s/catalog/%d/detail.aspx", s.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		name = fallbackName
	}

	priceText := doc.Find(".price-block__final-price").First().Text()
	if priceText == "" {
		priceText = doc.Find("ins.price-block__final-price").First().Text()
	}
	price, err := parsePriceText(priceText)
	if err != nil {
		return nil, err
	}

	return &ProductInfo{Name: name, Price: price}, nil
}

var priceDigits = regexp.MustCompile(`[\d]+(?:[.,]\d+)?`)

// parsePriceText extracts a ruble amount from rendered text like "1 234 ₽".
// Unlike the API payloads, page prices are already in major units.
func parsePriceText(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	match := priceDigits.FindString(s)
	if match == "" {
		return decimal.Zero, errNoResult
	}

	price, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, errNoResult
	}
	return price, nil
}
