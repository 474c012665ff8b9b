package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// PriceListener is notified whenever a freshly resolved price lands in the
// cache. Cache hits do not notify.
type PriceListener interface {
	OnPriceResolved(marketHashName string, price float64)
}

type PricingService struct {
	client   *resty.Client
	cache    *PriceCache
	baseURL  string
	appID    string
	currency string
	workers  int
	listener PriceListener
}

type PriceOverviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
}

func NewPricingService(baseURL, appID, currency string, workers int, cache *PriceCache) *PricingService {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Rust-Trader/1.0")

	if workers <= 0 {
		workers = 8
	}

	return &PricingService{
		client:   client,
		cache:    cache,
		baseURL:  baseURL,
		appID:    appID,
		currency: currency,
		workers:  workers,
	}
}

func (p *PricingService) SetListener(listener PriceListener) {
	p.listener = listener
}

// GetMarketPrice resolves one market hash name, consulting the cache first.
// The second return is false when no price could be resolved; failures are
// logged but never cached, so a later call is allowed to try again.
func (p *PricingService) GetMarketPrice(ctx context.Context, marketHashName string) (float64, bool) {
	if marketHashName == "" {
		return 0, false
	}

	if price, ok := p.cache.Get(marketHashName); ok {
		log.WithField("component", "pricing").Debugf("Price from cache for: %s", marketHashName)
		return price, true
	}

	price, err := p.fetchPrice(ctx, marketHashName)
	if err != nil {
		log.WithField("component", "pricing").Warnf("Error fetching price for %s: %v", marketHashName, err)
		return 0, false
	}

	p.cache.Put(marketHashName, price)
	if p.listener != nil {
		p.listener.OnPriceResolved(marketHashName, price)
	}
	return price, true
}

func (p *PricingService) fetchPrice(ctx context.Context, marketHashName string) (float64, error) {
	url := fmt.Sprintf("%s/market/priceoverview/", p.baseURL)

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid":            p.appID,
			"currency":         p.currency,
			"market_hash_name": marketHashName,
		}).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("price request returned status %d", resp.StatusCode())
	}

	var overview PriceOverviewResponse
	if err := json.Unmarshal(resp.Body(), &overview); err != nil {
		return 0, fmt.Errorf("malformed price response: %w", err)
	}
	if !overview.Success {
		return 0, fmt.Errorf("market price not found")
	}

	raw := overview.MedianPrice
	if raw == "" {
		raw = overview.LowestPrice
	}
	if raw == "" {
		return 0, fmt.Errorf("market price not found")
	}

	price, err := normalizePriceString(raw)
	if err != nil {
		return 0, fmt.Errorf("could not convert price %q: %w", raw, err)
	}
	return price, nil
}

// FetchPrices resolves every market hash name concurrently and returns a map
// covering the full input set; a nil value means no price resolved for that
// name. One failing name never blocks or aborts the others.
func (p *PricingService) FetchPrices(ctx context.Context, marketHashNames []string) map[string]*float64 {
	results := make(map[string]*float64, len(marketHashNames))
	seen := make(map[string]struct{}, len(marketHashNames))
	distinct := make([]string, 0, len(marketHashNames))
	for _, name := range marketHashNames {
		results[name] = nil
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.workers)
	)
	for _, name := range distinct {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if price, ok := p.GetMarketPrice(ctx, name); ok {
				mu.Lock()
				results[name] = &price
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()

	return results
}

// normalizePriceString turns a locale-formatted price like "1 234,56 ₽" into
// its numeric value. Values above 1000 whose source string carried no comma
// are taken to be minor currency units and divided by 100; upstream
// formatting is ambiguous there, so the rule stays in this one place.
func normalizePriceString(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in %q", raw)
	}

	hadComma := strings.Contains(cleaned, ",")
	if strings.Contains(cleaned, ".") {
		// comma is a thousands separator only when it precedes the period
		if hadComma && strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			return 0, fmt.Errorf("ambiguous separators in %q", raw)
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	cleaned = strings.TrimSuffix(cleaned, ".")

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if price > 1000 && !hadComma {
		price = price / 100
	}
	return price, nil
}
