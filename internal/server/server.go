package server

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/salonstreak/internal/config"
	"anoa.com/salonstreak/internal/entity"
	"anoa.com/salonstreak/internal/middleware"
	"anoa.com/salonstreak/pkg/mailer"
	"anoa.com/salonstreak/pkg/storage"

	challengeHttp "anoa.com/salonstreak/internal/modules/challenge/delivery/http"
	challengeRepo "anoa.com/salonstreak/internal/modules/challenge/repository"
	challengeService "anoa.com/salonstreak/internal/modules/challenge/service"

	notiHttp "anoa.com/salonstreak/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/salonstreak/internal/modules/notification/repository"
	notifService "anoa.com/salonstreak/internal/modules/notification/service"

	postinglogRepo "anoa.com/salonstreak/internal/modules/postinglog/repository"

	salonHttp "anoa.com/salonstreak/internal/modules/salon/delivery/http"
	salonRepo "anoa.com/salonstreak/internal/modules/salon/repository"
	salonService "anoa.com/salonstreak/internal/modules/salon/service"

	salonChallengeHttp "anoa.com/salonstreak/internal/modules/salonchallenge/delivery/http"
	salonChallengeRepo "anoa.com/salonstreak/internal/modules/salonchallenge/repository"
	salonChallengeService "anoa.com/salonstreak/internal/modules/salonchallenge/service"

	searchService "anoa.com/salonstreak/internal/modules/search/service"

	socialHttp "anoa.com/salonstreak/internal/modules/socialfeed/delivery/http"
	socialRepo "anoa.com/salonstreak/internal/modules/socialfeed/repository"
	socialService "anoa.com/salonstreak/internal/modules/socialfeed/service"

	streakHttp "anoa.com/salonstreak/internal/modules/streak/delivery/http"
	streakRepo "anoa.com/salonstreak/internal/modules/streak/repository"
	streakService "anoa.com/salonstreak/internal/modules/streak/service"

	userHttp "anoa.com/salonstreak/internal/modules/user/delivery/http"
	userRepo "anoa.com/salonstreak/internal/modules/user/repository"
	userService "anoa.com/salonstreak/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepository := userRepo.NewUserRepository(db)

	proofStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("Proof uploads disabled: %v", err)
		proofStorage = nil
	}

	mail, err := mailer.NewSMTPMailer()
	if err != nil {
		log.Printf("Owner emails disabled: %v", err)
		mail = nil
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	catalogSearch := searchService.NewCatalogSearchService(meiliClient)

	authSvc := userService.NewAuthService(userRepository)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	// Streak Module
	postingRepository := postinglogRepo.NewPostingLogRepository(db)
	socialRepository := socialRepo.NewSocialSignalRepository(db)
	streakRepository := streakRepo.NewStreakRepository(db)
	streakSvc := streakService.NewStreakService(postingRepository, socialRepository, streakRepository, notificationSvc, redisClient)
	streakHandler := streakHttp.NewStreakHandler(streakSvc, proofStorage)

	// Social Feed Module
	socialSvc := socialService.NewSocialFeedService(socialRepository, streakSvc)
	socialHandler := socialHttp.NewSocialFeedHandler(socialSvc)
	socialSvc.StartReconcileWorker(context.Background(), cfg.SocialReconcileEvery)

	// Challenge Module
	challengeRepository := challengeRepo.NewChallengeRepository(db)
	challengeSvc := challengeService.NewChallengeService(challengeRepository, catalogSearch, notificationSvc)
	challengeHandler := challengeHttp.NewChallengeHandler(challengeSvc)

	// Salon Module
	salonRepository := salonRepo.NewSalonRepository(db)
	salonSvc := salonService.NewSalonService(salonRepository, userRepository, notificationSvc)
	salonHandler := salonHttp.NewSalonHandler(salonSvc)

	// Salon Challenge Module
	salonChallengeRepository := salonChallengeRepo.NewSalonChallengeRepository(db)
	salonChallengeSvc := salonChallengeService.NewSalonChallengeService(salonChallengeRepository, salonRepository, userRepository, notificationSvc, mail)
	salonChallengeHandler := salonChallengeHttp.NewSalonChallengeHandler(salonChallengeSvc)
	salonChallengeSvc.StartNotifyRetryWorker(cfg.NotifyRetryEvery)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepository)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes: the social feed connector pushes signals here
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRole(entity.RoleAdmin))
		{
			adminGroup.POST("/social-signals", socialHandler.IngestSignal)
		}

		protected.GET("/auth/me", authHandler.Me)

		// Streak routes
		protected.POST("/posts/log", streakHandler.LogPost)
		protected.GET("/streak", streakHandler.GetSnapshot)
		protected.GET("/streak/posted-today", streakHandler.PostedToday)

		// Challenge routes
		protected.GET("/challenges", challengeHandler.ListDefinitions)
		protected.POST("/challenges/:challenge_id/start", challengeHandler.Start)
		protected.GET("/enrollments", challengeHandler.MyEnrollments)
		protected.POST("/enrollments/:enrollment_id/log", challengeHandler.LogProgress)
		protected.POST("/enrollments/:enrollment_id/abandon", challengeHandler.Abandon)

		// Salon membership routes
		protected.GET("/invites", salonHandler.MyInvites)
		protected.POST("/salons/:salon_id/accept", salonHandler.AcceptInvite)
		protected.POST("/salons/:salon_id/decline", salonHandler.DeclineInvite)

		// Stylist's own salon challenge progress
		protected.GET("/salon-challenges/progress", salonChallengeHandler.MyProgress)
		protected.POST("/salon-challenges/progress/:progress_id/log", salonChallengeHandler.LogProgress)

		// Owner routes
		ownerGroup := protected.Group("")
		ownerGroup.Use(authMiddleware.RequireRole(entity.RoleOwner))
		{
			ownerGroup.POST("/salons", salonHandler.CreateSalon)
			ownerGroup.GET("/salons/me", salonHandler.MySalon)
			ownerGroup.POST("/salons/invites", salonHandler.InviteMember)
			ownerGroup.GET("/salons/members", salonHandler.Members)

			ownerGroup.POST("/salon-challenges", salonChallengeHandler.Create)
			ownerGroup.GET("/salon-challenges", salonChallengeHandler.List)
			ownerGroup.GET("/salon-challenges/:challenge_id/board", salonChallengeHandler.Board)
			ownerGroup.PUT("/salon-challenges/:challenge_id/finish", salonChallengeHandler.Finish)
		}

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
