// Package stats derives read-only rating statistics. Averages are surfaced
// as formatted strings ("4.00") with nil meaning "no ratings yet" — a store
// with zero ratings must never look like a zero-rated one.
package stats

import (
	"fmt"

	"github.com/ratehub/store_ratings/internal/models"
)

// StoreStats is a store enriched with its owner's email and the mean of
// all its ratings.
type StoreStats struct {
	models.Store
	OwnerEmail string  `json:"ownerEmail"`
	AvgRating  *string `json:"avgRating"`
}

// UserStats is a user enriched with the owner-level average: the mean over
// all ratings of all stores the user owns. Non-owners carry nil.
type UserStats struct {
	models.User
	AvgRating *string `json:"avgRating,omitempty"`
}

func Average(ratings []models.Rating) *string {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	avg := fmt.Sprintf("%.2f", float64(sum)/float64(len(ratings)))
	return &avg
}

func AttachStoreStats(stores []models.Store, ratings []models.Rating, owners []models.User) []StoreStats {
	emailByOwner := make(map[uint]string, len(owners))
	for _, o := range owners {
		emailByOwner[o.ID] = o.Email
	}

	out := make([]StoreStats, len(stores))
	for i, s := range stores {
		var storeRatings []models.Rating
		for _, r := range ratings {
			if r.StoreID == s.ID {
				storeRatings = append(storeRatings, r)
			}
		}
		out[i] = StoreStats{
			Store:      s,
			OwnerEmail: emailByOwner[s.OwnerID],
			AvgRating:  Average(storeRatings),
		}
	}
	return out
}

func AttachOwnerStats(users []models.User, stores []models.Store, ratings []models.Rating) []UserStats {
	out := make([]UserStats, len(users))
	for i, u := range users {
		out[i] = UserStats{User: u}
		if u.Role != models.RoleStoreOwner {
			continue
		}

		owned := make(map[uint]bool)
		for _, s := range stores {
			if s.OwnerID == u.ID {
				owned[s.ID] = true
			}
		}
		var ownerRatings []models.Rating
		for _, r := range ratings {
			if owned[r.StoreID] {
				ownerRatings = append(ownerRatings, r)
			}
		}
		out[i].AvgRating = Average(ownerRatings)
	}
	return out
}

// OwnRating returns the single rating this user already gave this store,
// or nil when they have not rated it.
func OwnRating(userID, storeID uint, ratings []models.Rating) *int {
	for _, r := range ratings {
		if r.UserID == userID && r.StoreID == storeID {
			v := r.Rating
			return &v
		}
	}
	return nil
}
