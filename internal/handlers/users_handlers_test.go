package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/store_ratings/internal/models"
)

func TestListUsersOwnerAverage(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &UserHandler{DB: db}
	rh := &RatingHandler{DB: db}

	owner := seedUser(t, db, "Owner", "owner@example.com", models.RoleStoreOwner)
	s1 := seedStore(t, db, "First", owner.ID)
	s2 := seedStore(t, db, "Second", owner.ID)
	user := seedUser(t, db, "Rater", "rater@example.com", models.RoleUser)

	rate(t, e, rh, user, s1.ID, 5, "")
	rate(t, e, rh, user, s2.ID, 2, "")

	c, rec := newJSONContext(t, e, http.MethodGet, "/users", nil)
	require.NoError(t, h.ListUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []struct {
		Email     string  `json:"email"`
		Role      string  `json:"role"`
		AvgRating *string `json:"avgRating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)

	for _, u := range users {
		switch u.Role {
		case models.RoleStoreOwner:
			require.NotNil(t, u.AvgRating)
			require.Equal(t, "3.50", *u.AvgRating)
		default:
			require.Nil(t, u.AvgRating)
		}
	}
}

func TestStats(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &UserHandler{DB: db}
	rh := &RatingHandler{DB: db}

	owner := seedUser(t, db, "Owner", "owner@example.com", models.RoleStoreOwner)
	store := seedStore(t, db, "Shop", owner.ID)
	user := seedUser(t, db, "Rater", "rater@example.com", models.RoleUser)
	rate(t, e, rh, user, store.ID, 4, "")

	c, rec := newJSONContext(t, e, http.MethodGet, "/admin/stats", nil)
	require.NoError(t, h.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp["totalUsers"])
	require.Equal(t, int64(1), resp["totalStores"])
	require.Equal(t, int64(1), resp["totalRatings"])
}

func TestSearchUsers(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &UserHandler{DB: db}

	seedUser(t, db, "Alice Smith", "alice@example.com", models.RoleUser)
	seedUser(t, db, "Bob Smith", "bob@example.com", models.RoleStoreOwner)
	seedUser(t, db, "Carol Jones", "carol@example.com", models.RoleUser)

	c, rec := newJSONContext(t, e, http.MethodGet, "/admin/users?search=smith", nil)
	require.NoError(t, h.SearchUsers(c))

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)

	c, rec = newJSONContext(t, e, http.MethodGet, "/admin/users?search=smith&role=store_owner", nil)
	require.NoError(t, h.SearchUsers(c))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	require.Equal(t, "bob@example.com", users[0].Email)

	c, rec = newJSONContext(t, e, http.MethodGet, "/admin/users?sortBy=email&order=desc", nil)
	require.NoError(t, h.SearchUsers(c))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 3)
	require.Equal(t, "carol@example.com", users[0].Email)
}

func TestUserDetail(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &UserHandler{DB: db}
	rh := &RatingHandler{DB: db}

	owner := seedUser(t, db, "Owner", "owner@example.com", models.RoleStoreOwner)
	store := seedStore(t, db, "Shop", owner.ID)
	user := seedUser(t, db, "Rater", "rater@example.com", models.RoleUser)
	rate(t, e, rh, user, store.ID, 4, "nice")

	c, rec := newJSONContext(t, e, http.MethodGet, "/admin/user/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(owner.ID)))
	require.NoError(t, h.UserDetail(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User    models.User     `json:"user"`
		Ratings []models.Rating `json:"ratings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, owner.ID, resp.User.ID)
	require.Len(t, resp.Ratings, 1)
	require.Equal(t, 4, resp.Ratings[0].Rating)
}

func TestUserDetailNotFound(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &UserHandler{DB: db}

	c, _ := newJSONContext(t, e, http.MethodGet, "/admin/user/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	requireHTTPError(t, h.UserDetail(c), http.StatusNotFound)
}
