package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Divy2095/Foodie/internal/catalog"
	"github.com/Divy2095/Foodie/internal/config"
	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/httpx"
	"github.com/Divy2095/Foodie/internal/identity"
	"github.com/Divy2095/Foodie/internal/kvstore"
	"github.com/Divy2095/Foodie/internal/media"
)

func openDocstore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	switch cfg.DocstoreDriver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store := docstore.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		return docstore.NewMongo(client.Database(cfg.MongoDB)), nil
	}
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	docs, err := openDocstore(ctx, cfg)
	if err != nil {
		log.Fatalf("[admin] docstore: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	durable := kvstore.NewRedis(rdb)

	ids := identity.NewService(docs, durable)
	cat := catalog.NewService(docs)
	uploader := media.NewCloudinary(cfg.CloudinaryUploadURL, cfg.CloudinaryPreset)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())
	registerRoutes(r, ids, cat, uploader)

	log.Printf("admin listening on %s", cfg.AdminAddr)
	log.Fatal(r.Run(cfg.AdminAddr))
}
