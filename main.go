package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/handlers"
	"github.com/medifed/portal/internal/appointments"
	"github.com/medifed/portal/internal/assistant"
	"github.com/medifed/portal/internal/config"
	"github.com/medifed/portal/internal/database"
	"github.com/medifed/portal/internal/oidc"
	"github.com/medifed/portal/internal/sessions"
	"github.com/medifed/portal/internal/storage"
	"github.com/medifed/portal/internal/studies"
	"github.com/medifed/portal/internal/tokens"
	"github.com/medifed/portal/internal/users"
	"github.com/medifed/portal/pkg/logger"
	"github.com/medifed/portal/pkg/metrics"
	"github.com/medifed/portal/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: google=%v mongo=%v redis=%v", cfg.Google.ClientID != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var userSvc *users.Service
	var sessionsSvc *sessions.Service
	var studiesSvc *studies.Service

	// Connect to Redis early so the rate-limiter and session store can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness — 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["sessions"] = sessionsSvc != nil
		deps["users"] = userSvc != nil
		if sessionsSvc == nil || userSvc == nil {
			ready = false
		}
		deps["studies"] = studiesSvc != nil

		// federated sign-in: expected to work when a client ID was configured
		if cfg.Google.ClientID != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		name := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			name = "not_ready"
		}
		c.JSON(status, gin.H{"status": name, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Google ID-token verifier for federated sign-in
	if cfg.Google.ClientID != "" {
		ver, err := oidc.NewGoogleVerifier(ctx, cfg.Google.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize Google OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	// Optional insecure verifier for integration tests: parse claims without signature verification
	if verifier == nil {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}

	// Prefer Redis-based sessions when available (fast, TTL handled by the store)
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed services (users + appointments, sessions fallback).
	// Retry with backoff to tolerate startup races against the database container.
	var apptSvc *appointments.Service
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)

			userRepo := users.NewMongoUserRepository(db.Collection("users"))
			if err := userRepo.EnsureIndexes(ctx); err != nil {
				logger.Warnf("failed to ensure user indexes: %v", err)
			}
			userSvc = users.NewService(userRepo)

			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}

			apptSvc = appointments.NewService(appointments.NewMongoRepository(db.Collection("appointments")), userSvc)
		}
	}

	// Object storage for medical studies
	store, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
	if err != nil {
		logger.Warnf("failed to initialize object storage: %v", err)
	} else {
		studiesSvc = studies.NewService(store)
	}

	// Help assistant (extractive QA over the fixed help passage)
	assistantClient := assistant.New(cfg.Assistant.URL, cfg.Assistant.Model, cfg.Assistant.Token)

	// Register routes when their services came up
	if userSvc != nil && sessionsSvc != nil {
		cookieVer := tokens.NewCookieVerifier(cfg.Session.Secret)
		pageGuard := middleware.SessionRequired(cookieVer, sessionsSvc)
		apiGuard := middleware.SessionRequiredJSON(cookieVer, sessionsSvc)

		handlers.NewAuthHandler(cfg, userSvc, sessionsSvc, verifier).Register(r, pageGuard)
		handlers.NewPortalHandler(apptSvc).Register(r, pageGuard)
		handlers.NewAppointmentHandler(apptSvc).Register(r, pageGuard, apiGuard)
		if studiesSvc != nil {
			handlers.NewStudiesHandler(studiesSvc).Register(r, apiGuard)
		}
		handlers.NewChatHandler(assistantClient).Register(r, pageGuard, apiGuard)
	} else {
		logger.Warnf("portal handlers not registered because user/sessions services are unavailable")
	}
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Debugf("services: user=%v sessions=%v appts=%v studies=%v verifier=%v",
		userSvc != nil, sessionsSvc != nil, apptSvc != nil, studiesSvc != nil, verifier != nil)
	logger.Infof("Starting portal on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
