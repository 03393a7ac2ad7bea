package main

import (
	"context"
	"log"

	"anoa.com/salonstreak/internal/bootstrap"
	"anoa.com/salonstreak/internal/config"
	searchService "anoa.com/salonstreak/internal/modules/search/service"
	"anoa.com/salonstreak/internal/server"
	"anoa.com/salonstreak/pkg/database"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := bootstrap.SeedChallengeDefinitions(db); err != nil {
		log.Fatalf("failed to seed challenge catalog: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("⚠️ Redis unreachable, caching and live notifications disabled: %v", err)
			redisClient = nil
		}
	} else {
		log.Println("REDIS_URL not set, caching and live notifications disabled")
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	bootstrap.IndexCatalog(db, searchService.NewCatalogSearchService(meiliClient))

	srv := server.NewServer(cfg, db, redisClient)
	log.Printf("🚀 Listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
