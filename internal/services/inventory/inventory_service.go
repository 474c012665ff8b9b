package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"rust-trader/internal/models"
)

const iconBaseURL = "https://steamcommunity-a.akamaihd.net/economy/image/"

// PriceFetcher resolves market prices for a batch of market hash names. The
// returned map covers every requested name; a nil entry means no price.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, marketHashNames []string) map[string]*float64
}

type InventoryService struct {
	client         *resty.Client
	pricing        PriceFetcher
	baseURL        string
	appID          string
	currencySymbol string
}

type Asset struct {
	AssetID    string `json:"assetid"`
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
}

type Tag struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

type Description struct {
	ClassID        string `json:"classid"`
	InstanceID     string `json:"instanceid"`
	Name           string `json:"name"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url"`
	Tradable       int    `json:"tradable"`
	Marketable     int    `json:"marketable"`
	Type           string `json:"type"`
	Tags           []Tag  `json:"tags"`
}

type RawInventory struct {
	Assets       []Asset       `json:"assets"`
	Descriptions []Description `json:"descriptions"`
}

func NewInventoryService(baseURL, appID, currencySymbol string, pricing PriceFetcher) *InventoryService {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Rust-Trader/1.0")

	return &InventoryService{
		client:         client,
		pricing:        pricing,
		baseURL:        baseURL,
		appID:          appID,
		currencySymbol: currencySymbol,
	}
}

// GetInventory fetches the raw inventory payload for a Steam account. A nil
// result means the inventory is unavailable (private profile, upstream error).
func (s *InventoryService) GetInventory(ctx context.Context, steamID string) (*RawInventory, error) {
	url := fmt.Sprintf("%s/inventory/%s/%s/2", s.baseURL, steamID, s.appID)

	resp, err := s.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}

	log.WithField("component", "inventory").Infof("Steam inventory response status %d for %s", resp.StatusCode(), steamID)

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("inventory request returned status %d", resp.StatusCode())
	}

	var inv RawInventory
	if err := json.Unmarshal(resp.Body(), &inv); err != nil {
		return nil, fmt.Errorf("malformed inventory payload: %w", err)
	}
	return &inv, nil
}

// NormalizeInventory joins assets to their descriptions, keeps tradable items
// and merges in market prices. It always returns a usable (possibly empty)
// list; a non-nil error reports a structurally invalid payload.
func (s *InventoryService) NormalizeInventory(ctx context.Context, inv *RawInventory) ([]models.PricedItem, error) {
	items := []models.PricedItem{}

	if inv == nil {
		log.WithField("component", "inventory").Error("No inventory data provided")
		return items, fmt.Errorf("no inventory data provided")
	}
	if inv.Assets == nil || inv.Descriptions == nil {
		log.WithField("component", "inventory").Error("Invalid inventory data structure")
		return items, fmt.Errorf("invalid inventory data structure")
	}

	descriptions := make(map[string]*Description, len(inv.Descriptions))
	for i := range inv.Descriptions {
		d := &inv.Descriptions[i]
		descriptions[descriptionKey(d.ClassID, d.InstanceID)] = d
	}

	type candidate struct {
		asset       Asset
		description *Description
	}
	var candidates []candidate
	var marketHashNames []string
	seen := make(map[string]struct{})
	for _, asset := range inv.Assets {
		description, ok := descriptions[descriptionKey(asset.ClassID, asset.InstanceID)]
		if !ok {
			// nothing to display without descriptive metadata
			continue
		}
		if description.Tradable == 0 || description.MarketHashName == "" {
			continue
		}
		candidates = append(candidates, candidate{asset: asset, description: description})
		if _, ok := seen[description.MarketHashName]; !ok {
			seen[description.MarketHashName] = struct{}{}
			marketHashNames = append(marketHashNames, description.MarketHashName)
		}
	}

	log.WithField("component", "inventory").Infof("Found %d assets, %d descriptions, %d tradable items",
		len(inv.Assets), len(inv.Descriptions), len(candidates))

	prices := map[string]*float64{}
	if len(marketHashNames) > 0 {
		prices = s.pricing.FetchPrices(ctx, marketHashNames)
	}

	for _, c := range candidates {
		items = append(items, models.PricedItem{
			AssetID:        c.asset.AssetID,
			Name:           c.description.Name,
			MarketHashName: c.description.MarketHashName,
			IconURL:        iconBaseURL + c.description.IconURL,
			Tradable:       c.description.Tradable != 0,
			Marketable:     c.description.Marketable != 0,
			Type:           c.description.Type,
			Wear:           firstTagName(c.description.Tags, "Exterior"),
			Rarity:         firstTagName(c.description.Tags, "Rarity"),
			Price:          s.formatPrice(prices[c.description.MarketHashName]),
		})
	}

	log.WithField("component", "inventory").Infof("Parsed %d items", len(items))
	return items, nil
}

func (s *InventoryService) formatPrice(price *float64) string {
	if price == nil {
		return "Not Found"
	}
	return fmt.Sprintf("%.2f %s", *price, s.currencySymbol)
}

func descriptionKey(classID, instanceID string) string {
	return classID + "_" + instanceID
}

func firstTagName(tags []Tag, category string) string {
	for _, tag := range tags {
		if tag.Category == category {
			return tag.Name
		}
	}
	return ""
}
