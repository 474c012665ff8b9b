package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rust-trader/internal/models"
	inventoryService "rust-trader/internal/services/inventory"
)

type stubPriceFetcher struct {
	prices map[string]float64
}

func (s *stubPriceFetcher) FetchPrices(ctx context.Context, marketHashNames []string) map[string]*float64 {
	results := make(map[string]*float64, len(marketHashNames))
	for _, name := range marketHashNames {
		if price, ok := s.prices[name]; ok {
			price := price
			results[name] = &price
		} else {
			results[name] = nil
		}
	}
	return results
}

func setupTest(t *testing.T, steamHandler http.HandlerFunc) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	steam := httptest.NewServer(steamHandler)
	t.Cleanup(steam.Close)

	fetcher := &stubPriceFetcher{prices: map[string]float64{"Assault Rifle": 77.5}}
	inventory := inventoryService.NewInventoryService(steam.URL, "252490", "₽", fetcher)

	r := gin.New()
	SetupRoutes(r.Group("/api/v1"), db, inventory)
	return r, db
}

func performRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetInventory(t *testing.T) {
	r, db := setupTest(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{
			"assets":[{"assetid":"a1","classid":"c1","instanceid":"i1"}],
			"descriptions":[{"classid":"c1","instanceid":"i1","name":"Assault Rifle","market_hash_name":"Assault Rifle","tradable":1,"marketable":1}]
		}`)
	})

	w := performRequest(r, http.MethodGet, "/api/v1/inventory/76561198000000001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []models.PricedItem `json:"items"`
		Count int                 `json:"count"`
		Error string              `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Error)
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "77.50 ₽", resp.Items[0].Price)

	// first view creates the user record
	var user models.User
	require.NoError(t, db.Where("steam_id = ?", "76561198000000001").First(&user).Error)
}

func TestGetInventory_UpstreamUnavailable(t *testing.T) {
	r, _ := setupTest(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	w := performRequest(r, http.MethodGet, "/api/v1/inventory/76561198000000002", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []models.PricedItem `json:"items"`
		Error string              `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Items)
	require.Contains(t, resp.Error, "Failed to load inventory")
}

func TestSaveTradeLink(t *testing.T) {
	r, db := setupTest(t, func(w http.ResponseWriter, req *http.Request) {})
	require.NoError(t, db.Create(&models.User{SteamID: "765", Username: "player"}).Error)

	w := performRequest(r, http.MethodPost, "/api/v1/profile/tradelink", map[string]string{
		"steam_id":  "765",
		"tradelink": "https://steamcommunity.com/tradeoffer/new/?partner=1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.Where("steam_id = ?", "765").First(&user).Error)
	require.Equal(t, "https://steamcommunity.com/tradeoffer/new/?partner=1", user.TradeLink)
}

func TestSaveTradeLink_UnknownUser(t *testing.T) {
	r, _ := setupTest(t, func(w http.ResponseWriter, req *http.Request) {})

	w := performRequest(r, http.MethodPost, "/api/v1/profile/tradelink", map[string]string{
		"steam_id":  "nobody",
		"tradelink": "https://example.com",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveEmail_Invalid(t *testing.T) {
	r, _ := setupTest(t, func(w http.ResponseWriter, req *http.Request) {})

	w := performRequest(r, http.MethodPost, "/api/v1/profile/email", map[string]string{
		"steam_id": "765",
		"email":    "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveTelegram(t *testing.T) {
	r, db := setupTest(t, func(w http.ResponseWriter, req *http.Request) {})
	require.NoError(t, db.Create(&models.User{SteamID: "765", Username: "player"}).Error)

	w := performRequest(r, http.MethodPost, "/api/v1/profile/telegram", map[string]string{
		"steam_id": "765",
		"telegram": "@player",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.Where("steam_id = ?", "765").First(&user).Error)
	require.NotNil(t, user.Telegram)
	require.Equal(t, "@player", *user.Telegram)
}

func TestGetUser_NotFound(t *testing.T) {
	r, _ := setupTest(t, func(w http.ResponseWriter, req *http.Request) {})

	w := performRequest(r, http.MethodGet, "/api/v1/users/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
