package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a Steam account known to the service
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SteamID   string         `json:"steam_id" gorm:"unique;not null"`
	Username  string         `json:"username"`
	TradeLink string         `json:"trade_link"`
	Email     *string        `json:"email" gorm:"unique"`
	Telegram  *string        `json:"telegram" gorm:"unique"`
	CountBuy  uint           `json:"count_buy" gorm:"default:0"`
	CountSell uint           `json:"count_sell" gorm:"default:0"`
	Rating    float64        `json:"rating" gorm:"default:5.0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// PricedItem is one normalized inventory entry with its resolved market price
type PricedItem struct {
	AssetID        string `json:"asset_id"`
	Name           string `json:"name"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url"`
	Tradable       bool   `json:"tradable"`
	Marketable     bool   `json:"marketable"`
	Type           string `json:"type"`
	Wear           string `json:"wear,omitempty"`
	Rarity         string `json:"rarity,omitempty"`
	Price          string `json:"price"`
}
