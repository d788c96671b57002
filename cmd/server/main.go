package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ratehub/store_ratings/internal/config"
	"github.com/ratehub/store_ratings/internal/es"
	"github.com/ratehub/store_ratings/internal/events"
	"github.com/ratehub/store_ratings/internal/handlers"
	"github.com/ratehub/store_ratings/internal/logging"
	authmw "github.com/ratehub/store_ratings/internal/middleware/auth"
	loggingmw "github.com/ratehub/store_ratings/internal/middleware/logging"
	"github.com/ratehub/store_ratings/internal/session"
	httpserver "github.com/ratehub/store_ratings/internal/transport/http"
)

const storeIndex = "store"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if err := config.EnsureDefaultAdmin(db, configuration.ADMIN_EMAIL, configuration.ADMIN_PASSWORD); err != nil {
		log.Fatalf("default admin error: %v", err)
	}

	prod := events.NewProducer(config.CSV(configuration.KAFKA_ADDRESS))

	searchHandler := &handlers.SearchHandler{Index: storeIndex}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Printf("elasticsearch unavailable: %v", err)
		} else {
			searchHandler.ES = client
		}
	}

	sessions := session.NewStore()
	mw := &authmw.Middleware{Sessions: sessions}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		Auth:           mw,
		AuthHandler:    &handlers.AuthHandler{DB: db, Sessions: sessions, Producer: prod},
		UserHandler:    &handlers.UserHandler{DB: db},
		StoreHandler:   &handlers.StoreHandler{DB: db, Producer: prod, ES: searchHandler.ES, Index: storeIndex},
		RatingHandler:  &handlers.RatingHandler{DB: db, Producer: prod},
		ProfileHandler: &handlers.ProfileHandler{DB: db, Producer: prod},
		SearchHandler:  searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
