package main

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/cache"
	"github.com/justsurfingit/job-board/internal/config"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/events"
	"github.com/justsurfingit/job-board/internal/handlers"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Configuration & logging
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// 2. Database Connection
	db, err := database.Connect(database.Config{
		DSN:             cfg.DBURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}

	// 3. Optional job detail cache and event publisher
	var jobCache cache.JobCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cache.Config{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			log.WithError(err).Fatal("redis unavailable")
		}
		defer client.Close()
		jobCache = cache.NewRedisJobCache(client, cfg.JobCacheTTL)
		log.WithField("addr", cfg.RedisAddr).Info("job detail cache enabled")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer conn.Close()
		rabbit, err := events.NewRabbitPublisher(conn, cfg.EventsExchange)
		if err != nil {
			log.WithError(err).Fatal("failed to init publisher")
		}
		defer rabbit.Close()
		publisher = rabbit
		log.WithField("exchange", cfg.EventsExchange).Info("event publishing enabled")
	}

	// 4. Core Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	pagination := services.Pagination{DefaultLimit: cfg.DefaultPageSize, MaxLimit: cfg.MaxPageSize}

	llmService, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create LLM client")
	}
	jobService := services.NewJobService(db, log, jobCache, publisher, pagination)
	applicationService := services.NewApplicationService(db, log, jobCache, publisher)
	authService := services.NewAuthService(db, log, tokens)
	userService := services.NewUserService(db, log)
	companyService := services.NewCompanyService(db, log, pagination)

	// 5. Router & CORS
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 6. Routes
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService, log),
		User:    handlers.NewUserHandler(userService, applicationService, log),
		Company: handlers.NewCompanyHandler(companyService, jobService, log),
		Job:     handlers.NewJobHandler(llmService, jobService, applicationService, log),
	}, tokens)

	log.WithField("addr", cfg.HTTPPort).Info("server starting")
	if err := r.Run(cfg.HTTPPort); err != nil {
		log.WithError(err).Fatal("server failed to start")
	}
}
