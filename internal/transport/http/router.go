package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ratehub/store_ratings/internal/handlers"
	"github.com/ratehub/store_ratings/internal/middleware/auth"
	"github.com/ratehub/store_ratings/internal/models"
)

type Deps struct {
	DB             *gorm.DB
	Auth           *auth.Middleware
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	StoreHandler   *handlers.StoreHandler
	RatingHandler  *handlers.RatingHandler
	ProfileHandler *handlers.ProfileHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(204) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(204) })

	mw := d.Auth

	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, mw.RequireSession)

	e.GET("/users", d.UserHandler.ListUsers, mw.RequireSession, mw.RequireRoles(models.RoleAdmin))

	e.POST("/stores", d.StoreHandler.CreateStore, mw.RequireSession, mw.RequireRoles(models.RoleAdmin, models.RoleStoreOwner))
	e.GET("/stores", d.StoreHandler.ListStores, mw.RequireSession)
	e.GET("/stores/search", d.SearchHandler.Search, mw.RequireSession)
	e.GET("/ratings/:storeId", d.RatingHandler.StoreRatings, mw.RequireSession)

	admin := e.Group("/admin", mw.RequireSession, mw.RequireRoles(models.RoleAdmin))
	admin.GET("/stats", d.UserHandler.Stats)
	admin.GET("/users", d.UserHandler.SearchUsers)
	admin.GET("/stores", d.StoreHandler.SearchStores)
	admin.GET("/user/:id", d.UserHandler.UserDetail)
	admin.GET("/details", d.ProfileHandler.Details)

	e.GET("/store-owner/details", d.ProfileHandler.Details, mw.RequireSession, mw.RequireRoles(models.RoleStoreOwner))
	e.GET("/owner/dashboard", d.RatingHandler.OwnerDashboard, mw.RequireSession, mw.RequireRoles(models.RoleStoreOwner))

	user := e.Group("/user", mw.RequireSession)
	user.PUT("/password", d.ProfileHandler.UpdatePassword)
	user.PUT("/address", d.ProfileHandler.UpdateAddress)
	user.GET("/details", d.ProfileHandler.Details, mw.RequireRoles(models.RoleUser))
	user.POST("/rate", d.RatingHandler.Rate, mw.RequireRoles(models.RoleUser))
	user.GET("/stores", d.RatingHandler.UserStores, mw.RequireRoles(models.RoleUser))
}
