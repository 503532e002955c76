package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eshop-backend/internal/handlers"
	"eshop-backend/internal/service"
	"eshop-backend/internal/store"
	"eshop-backend/internal/store/memory"
	"eshop-backend/internal/upload"
)

const uploadsPath = "/public/uploads"

// NewServer wires stores, services and routes. The returned cleanup closes
// the database connection.
func NewServer(cfg Config) (*gin.Engine, func(), error) {
	if cfg.JWTSecret == "" {
		return nil, nil, errors.New("JWT_SECRET is not set")
	}
	ctx := context.Background()

	stores, cleanup, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	backend, err := uploadBackend(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if local, ok := backend.(upload.Local); ok {
		r.Static(uploadsPath, local.Dir)
	}

	auth := service.NewAuthService(stores.Users, service.AuthConfig{
		Secret:     []byte(cfg.JWTSecret),
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	handlers.Routes(r.Group(cfg.APIPrefix), handlers.Deps{
		Stores:  stores,
		Auth:    auth,
		Orders:  service.NewOrderService(stores),
		Uploads: upload.New(backend),
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	})

	return r, cleanup, nil
}

func openStores(ctx context.Context, cfg Config) (store.Stores, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Println("using in-memory store, data is lost on exit")
		return memory.New().Stores(), func() {}, nil
	case "mongo":
		client, err := store.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return store.Stores{}, nil, err
		}
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("disconnect mongo: %v", err)
			}
		}
		db := client.Database(cfg.DBName)
		if err := store.EnsureIndexes(ctx, db); err != nil {
			cleanup()
			return store.Stores{}, nil, err
		}
		return store.NewMongoStores(db), cleanup, nil
	default:
		return store.Stores{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func uploadBackend(ctx context.Context, cfg Config) (upload.Backend, error) {
	switch cfg.UploadBackend {
	case "local":
		return upload.Local{Dir: cfg.UploadDir, PublicPath: uploadsPath}, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is not set")
		}
		return upload.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	default:
		return nil, fmt.Errorf("unknown UPLOAD_BACKEND %q", cfg.UploadBackend)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
