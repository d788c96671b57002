package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ratehub/store_ratings/internal/events"
	"github.com/ratehub/store_ratings/internal/models"
	searchsvc "github.com/ratehub/store_ratings/internal/service/search"
	"github.com/ratehub/store_ratings/internal/stats"
)

type StoreHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

var storeSortable = map[string]bool{
	"name": true, "address": true, "id": true,
}

func (h *StoreHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicStoreEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *StoreHandler) CreateStore(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		OwnerID uint   `json:"ownerId"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Address == "" || req.OwnerID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "all fields are required")
	}

	var owner models.User
	if err := h.DB.First(&owner, req.OwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "owner not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	store := models.Store{
		Name:    req.Name,
		Address: req.Address,
		OwnerID: req.OwnerID,
	}
	if err := h.DB.Create(&store).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(store.ID), map[string]interface{}{
		"type":    "store_created",
		"storeID": store.ID,
		"name":    store.Name,
		"ownerID": store.OwnerID,
	})

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := searchsvc.IndexStore(ctx, h.ES, h.Index, store); err != nil {
			c.Logger().Errorf("ES index error: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Store created successfully",
		"store":   store,
	})
}

// ListStores returns every store with its owner's email and average rating.
func (h *StoreHandler) ListStores(c echo.Context) error {
	q := applySearchSort(
		h.DB.Model(&models.Store{}),
		c.QueryParam("search"),
		[]string{"name", "address"},
		c.QueryParam("sortBy"), c.QueryParam("order"),
		storeSortable,
	)

	var stores []models.Store
	if err := q.Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ratings, owners, err := h.loadStoreContext(stores)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, stats.AttachStoreStats(stores, ratings, owners))
}

// SearchStores lists stores filtered and sorted for the admin views without
// the rating aggregation.
func (h *StoreHandler) SearchStores(c echo.Context) error {
	q := applySearchSort(
		h.DB.Model(&models.Store{}),
		c.QueryParam("search"),
		[]string{"name", "address"},
		c.QueryParam("sortBy"), c.QueryParam("order"),
		storeSortable,
	)

	var stores []models.Store
	if err := q.Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) loadStoreContext(stores []models.Store) ([]models.Rating, []models.User, error) {
	if len(stores) == 0 {
		return nil, nil, nil
	}

	storeIDs := make([]uint, len(stores))
	ownerIDs := make([]uint, len(stores))
	for i, s := range stores {
		storeIDs[i] = s.ID
		ownerIDs[i] = s.OwnerID
	}

	var ratings []models.Rating
	if err := h.DB.Where("store_id IN ?", storeIDs).Find(&ratings).Error; err != nil {
		return nil, nil, err
	}
	var owners []models.User
	if err := h.DB.Where("id IN ?", ownerIDs).Find(&owners).Error; err != nil {
		return nil, nil, err
	}
	return ratings, owners, nil
}
