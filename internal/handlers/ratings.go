package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ratehub/store_ratings/internal/events"
	"github.com/ratehub/store_ratings/internal/middleware/auth"
	"github.com/ratehub/store_ratings/internal/models"
	"github.com/ratehub/store_ratings/internal/stats"
)

type RatingHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *RatingHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicRatingEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// Rate creates or updates the caller's rating of a store. The write is a
// single ON CONFLICT statement against the (user_id, store_id) unique
// index, so concurrent submissions cannot produce two rows.
func (h *RatingHandler) Rate(c echo.Context) error {
	sess, ok := auth.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	var req struct {
		StoreID  uint   `json:"storeId"`
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.StoreID == 0 || req.Rating == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "storeId and rating required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	var store models.Store
	if err := h.DB.First(&store, req.StoreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "store not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	rating := models.Rating{
		UserID:   sess.UserID,
		StoreID:  req.StoreID,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "feedback"}),
	}).Create(&rating).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Re-read to return the canonical row: on a conflict-update the
	// generated id of the insert attempt is not the stored one.
	var saved models.Rating
	if err := h.DB.Where("user_id = ? AND store_id = ?", sess.UserID, req.StoreID).First(&saved).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(saved.ID), map[string]interface{}{
		"type":    "rating_upserted",
		"userID":  sess.UserID,
		"storeID": saved.StoreID,
		"rating":  saved.Rating,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Rating submitted",
		"rating":  saved,
	})
}

type userStoreView struct {
	models.Store
	AvgRating *string `json:"avgRating"`
	OwnRating *int    `json:"ownRating"`
}

// UserStores lists stores for the rating view: overall average plus the
// caller's own rating per store.
func (h *RatingHandler) UserStores(c echo.Context) error {
	sess, ok := auth.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

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

	views := make([]userStoreView, len(stores))
	if len(stores) > 0 {
		storeIDs := make([]uint, len(stores))
		for i, s := range stores {
			storeIDs[i] = s.ID
		}
		var ratings []models.Rating
		if err := h.DB.Where("store_id IN ?", storeIDs).Find(&ratings).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		for i, s := range stores {
			var storeRatings []models.Rating
			for _, r := range ratings {
				if r.StoreID == s.ID {
					storeRatings = append(storeRatings, r)
				}
			}
			views[i] = userStoreView{
				Store:     s,
				AvgRating: stats.Average(storeRatings),
				OwnRating: stats.OwnRating(sess.UserID, s.ID, ratings),
			}
		}
	}

	return c.JSON(http.StatusOK, views)
}

type dashboardEntry struct {
	UserID   uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	StoreID  uint   `json:"storeId"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// OwnerDashboard aggregates across every store the caller owns: one entry
// per rating with the rater's identity, plus the overall average.
func (h *RatingHandler) OwnerDashboard(c echo.Context) error {
	sess, ok := auth.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	var stores []models.Store
	if err := h.DB.Where("owner_id = ?", sess.UserID).Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ratings := []models.Rating{}
	if len(stores) > 0 {
		storeIDs := make([]uint, len(stores))
		for i, s := range stores {
			storeIDs[i] = s.ID
		}
		if err := h.DB.Where("store_id IN ?", storeIDs).Find(&ratings).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	entries := make([]dashboardEntry, 0, len(ratings))
	if len(ratings) > 0 {
		userIDs := make([]uint, len(ratings))
		for i, r := range ratings {
			userIDs[i] = r.UserID
		}
		var raters []models.User
		if err := h.DB.Where("id IN ?", userIDs).Find(&raters).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		raterByID := make(map[uint]models.User, len(raters))
		for _, u := range raters {
			raterByID[u.ID] = u
		}

		for _, r := range ratings {
			u := raterByID[r.UserID]
			entries = append(entries, dashboardEntry{
				UserID:   u.ID,
				Name:     u.Name,
				Email:    u.Email,
				StoreID:  r.StoreID,
				Rating:   r.Rating,
				Feedback: r.Feedback,
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":     entries,
		"avgRating": stats.Average(ratings),
	})
}

// StoreRatings returns the raw ratings of one store.
func (h *RatingHandler) StoreRatings(c echo.Context) error {
	storeID, err := strconv.Atoi(c.Param("storeId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}

	var ratings []models.Rating
	if err := h.DB.Where("store_id = ?", storeID).Find(&ratings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ratings)
}
