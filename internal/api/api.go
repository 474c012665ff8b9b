package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rust-trader/internal/models"
	inventoryService "rust-trader/internal/services/inventory"
)

type APIHandler struct {
	db               *gorm.DB
	inventoryService *inventoryService.InventoryService
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, inventory *inventoryService.InventoryService) {
	handler := &APIHandler{
		db:               db,
		inventoryService: inventory,
	}

	// Inventory routes
	inv := r.Group("/inventory")
	{
		inv.GET("/:steamid", handler.GetInventory)
	}

	// User routes
	users := r.Group("/users")
	{
		users.GET("/:steamid", handler.GetUser)
	}

	// Profile routes
	profile := r.Group("/profile")
	{
		profile.POST("/tradelink", handler.SaveTradeLink)
		profile.POST("/email", handler.SaveEmail)
		profile.POST("/telegram", handler.SaveTelegram)
	}
}

// GetInventory returns the priced inventory for a Steam account. Upstream
// failures degrade to an empty item list with an error message instead of a
// failed request.
func (h *APIHandler) GetInventory(c *gin.Context) {
	steamID := c.Param("steamid")

	// First view of an account creates its user record
	var user models.User
	result := h.db.Where("steam_id = ?", steamID).First(&user)
	if result.Error != nil {
		user = models.User{SteamID: steamID, Username: steamID}
		if err := h.db.Create(&user).Error; err != nil {
			log.WithField("component", "api").Warnf("Failed to create user %s: %v", steamID, err)
		} else {
			log.WithField("component", "api").Infof("Created user %s", steamID)
		}
	}

	ctx := c.Request.Context()

	inv, err := h.inventoryService.GetInventory(ctx, steamID)
	if err != nil {
		log.WithField("component", "api").Warnf("Failed to get inventory for %s: %v", steamID, err)
		c.JSON(http.StatusOK, gin.H{
			"items": []models.PricedItem{},
			"count": 0,
			"error": "Failed to load inventory (maybe private?)",
		})
		return
	}

	items, err := h.inventoryService.NormalizeInventory(ctx, inv)
	response := gin.H{
		"items": items,
		"count": len(items),
	}
	if err != nil {
		response["error"] = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

func (h *APIHandler) GetUser(c *gin.Context) {
	steamID := c.Param("steamid")

	var user models.User
	if err := h.db.Where("steam_id = ?", steamID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type tradeLinkRequest struct {
	SteamID   string `json:"steam_id" binding:"required"`
	TradeLink string `json:"tradelink" binding:"required"`
}

func (h *APIHandler) SaveTradeLink(c *gin.Context) {
	var req tradeLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("steam_id = ?", req.SteamID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.TradeLink = req.TradeLink
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save trade link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type emailRequest struct {
	SteamID string `json:"steam_id" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

func (h *APIHandler) SaveEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("steam_id = ?", req.SteamID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Email = &req.Email
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type telegramRequest struct {
	SteamID  string `json:"steam_id" binding:"required"`
	Telegram string `json:"telegram" binding:"required"`
}

func (h *APIHandler) SaveTelegram(c *gin.Context) {
	var req telegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("steam_id = ?", req.SteamID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Telegram = &req.Telegram
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save telegram"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
