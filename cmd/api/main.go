package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/config"
	"github.com/noah-isme/lumora-api/internal/database"
	"github.com/noah-isme/lumora-api/internal/handler"
	"github.com/noah-isme/lumora-api/internal/middleware"
	"github.com/noah-isme/lumora-api/internal/repository"
	"github.com/noah-isme/lumora-api/internal/router"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/pkg/ai"
	cloud "github.com/noah-isme/lumora-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		materials, err := cloud.New(cloudCfg, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = materials
	} else {
		logger.Warn().Msg("cloudinary not configured, course material uploads disabled")
	}

	var gateway ai.Gateway
	if cfg.AIEnabled() {
		openAI, err := ai.NewOpenAIGateway(ai.OpenAIConfig{
			APIKey:    cfg.AIAPIKey,
			BaseURL:   cfg.AIBaseURL,
			Model:     cfg.AIModel,
			MaxTokens: cfg.AIMaxTokens,
			Logger:    logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai gateway: %v", err)
		}
		gateway = openAI
	} else {
		logger.Warn().Msg("ai api key not configured, assistant disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	store := repository.NewStore(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	roleResolver := service.NewRoleResolver(roleRepo, logger)
	inboxService := service.NewInboxService(repository.NewMessageRepository(db), redisClient, cfg.RealtimeChannel, natsConn, logger)
	actionService := service.NewAdminActionService(store, roleResolver, service.AdminActionOptions{
		Dispatcher:     inboxService,
		Storage:        storage,
		MaxUploadBytes: cfg.UploadMaxBytes,
	}, logger)
	directoryService := service.NewAdminDirectoryService(userRepo, roleRepo, profileRepo, logger)
	auditService := service.NewAuditService(repository.NewAuditRepository(db), userRepo, logger)
	adGateService := service.NewAdGateService(repository.NewAdViewRepository(db), cfg.AdGateSecret, cfg.AdGateDwell, logger)
	presenceService := service.NewPresenceService(profileRepo, redisClient, cfg.PresenceInterval, logger)
	spaceService := service.NewSpaceService(repository.NewSpaceRepository(db), logger)
	communityService := service.NewCommunityService(repository.NewCommunityRepository(db), spaceService, logger)
	leaderboardService := service.NewLeaderboardService(repository.NewLeaderboardRepository(db), userRepo, profileRepo, redisClient, cfg.LeaderboardCacheTTL, logger)
	courseService := service.NewCourseService(repository.NewCourseRepository(db), logger)
	assistantService := service.NewAssistantService(gateway, logger)
	bootstrapService := service.NewBootstrapService(store, cfg.SeedEnabled, cfg.SeedToken, logger)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	inboxService.Start(rootCtx)

	if cfg.HeadAdminEmail != "" {
		created, err := bootstrapService.EnsureHeadAdmin(rootCtx, cfg.HeadAdminEmail)
		if err != nil {
			logger.Error().Err(err).Msg("failed to bootstrap head admin")
		} else if created {
			logger.Info().Str("email", cfg.HeadAdminEmail).Msg("head admin bootstrapped")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		RoleHandler:        handler.NewRoleHandler(roleResolver),
		AdminHandler:       handler.NewAdminHandler(actionService, directoryService, validate, logger),
		AuditHandler:       handler.NewAuditHandler(auditService, logger),
		MessageHandler:     handler.NewMessageHandler(actionService, inboxService, validate, logger),
		AdGateHandler:      handler.NewAdGateHandler(adGateService, validate, logger),
		PresenceHandler:    handler.NewPresenceHandler(presenceService, logger),
		SpaceHandler:       handler.NewSpaceHandler(spaceService, validate, logger),
		CommunityHandler:   handler.NewCommunityHandler(communityService, validate, logger),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService, validate, logger),
		CourseHandler:      handler.NewCourseHandler(courseService, logger),
		AssistantHandler:   handler.NewAssistantHandler(assistantService, validate, logger),
		SeedHandler:        handler.NewSeedHandler(bootstrapService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		RoleGuard:          roleResolver,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancelRoot)
}

func waitForShutdown(app *fiber.App, stopWorkers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
