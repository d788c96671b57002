package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ratehub/store_ratings/internal/models"
	"github.com/ratehub/store_ratings/internal/stats"
)

// UserHandler serves the admin-side user views.
type UserHandler struct {
	DB *gorm.DB
}

var userSortable = map[string]bool{
	"name": true, "email": true, "address": true, "role": true, "id": true,
}

// ListUsers returns every user; store owners carry the average over all
// ratings of all stores they own.
func (h *UserHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var stores []models.Store
	if err := h.DB.Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var ratings []models.Rating
	if err := h.DB.Find(&ratings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, stats.AttachOwnerStats(users, stores, ratings))
}

// Stats reports the dashboard totals.
func (h *UserHandler) Stats(c echo.Context) error {
	var totalUsers, totalStores, totalRatings int64
	if err := h.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&models.Store{}).Count(&totalStores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&models.Rating{}).Count(&totalRatings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalUsers":   totalUsers,
		"totalStores":  totalStores,
		"totalRatings": totalRatings,
	})
}

// SearchUsers lists users filtered by a search term over name, email and
// address, optionally restricted to one role.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	q := applySearchSort(
		h.DB.Model(&models.User{}),
		c.QueryParam("search"),
		[]string{"name", "email", "address"},
		c.QueryParam("sortBy"), c.QueryParam("order"),
		userSortable,
	)
	if role := c.QueryParam("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

// UserDetail returns one user; for store owners it also returns the
// ratings collected across their stores.
func (h *UserHandler) UserDetail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ratings := []models.Rating{}
	if user.Role == models.RoleStoreOwner {
		var stores []models.Store
		if err := h.DB.Where("owner_id = ?", user.ID).Find(&stores).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		storeIDs := make([]uint, len(stores))
		for i, s := range stores {
			storeIDs[i] = s.ID
		}
		if len(storeIDs) > 0 {
			if err := h.DB.Where("store_id IN ?", storeIDs).Find(&ratings).Error; err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"ratings": ratings,
	})
}
