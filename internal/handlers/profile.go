package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ratehub/store_ratings/internal/events"
	"github.com/ratehub/store_ratings/internal/hash"
	"github.com/ratehub/store_ratings/internal/middleware/auth"
	"github.com/ratehub/store_ratings/internal/models"
)

// ProfileHandler serves the caller's own account: role-gated details plus
// the two self-service mutations (password, address).
type ProfileHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *ProfileHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProfileHandler) Details(c echo.Context) error {
	sess, ok := auth.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	var user models.User
	if err := h.DB.First(&user, sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
		"address": user.Address,
	})
}

func (h *ProfileHandler) UpdatePassword(c echo.Context) error {
	sess, ok := auth.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", sess.UserID).
		Update("password_hash", pwHash).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(sess.UserID), map[string]interface{}{
		"type":   "password_updated",
		"userID": sess.UserID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated"})
}

func (h *ProfileHandler) UpdateAddress(c echo.Context) error {
	sess, ok := auth.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "address required")
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", sess.UserID).
		Update("address", req.Address).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(sess.UserID), map[string]interface{}{
		"type":   "address_updated",
		"userID": sess.UserID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Address updated"})
}
