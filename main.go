package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobportal/jobportal-api/handlers"
	"github.com/jobportal/jobportal-api/internal/applications"
	"github.com/jobportal/jobportal-api/internal/config"
	"github.com/jobportal/jobportal-api/internal/database"
	"github.com/jobportal/jobportal-api/internal/jobs"
	"github.com/jobportal/jobportal-api/internal/models"
	"github.com/jobportal/jobportal-api/internal/notify"
	"github.com/jobportal/jobportal-api/internal/oidc"
	"github.com/jobportal/jobportal-api/internal/sessions"
	"github.com/jobportal/jobportal-api/internal/storage"
	"github.com/jobportal/jobportal-api/internal/tokens"
	"github.com/jobportal/jobportal-api/internal/users"
	"github.com/jobportal/jobportal-api/pkg/logger"
	"github.com/jobportal/jobportal-api/pkg/metrics"
	"github.com/jobportal/jobportal-api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v smtp=%v google=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.SMTP.Host != "", cfg.Google.ClientID != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Credentialed CORS: the token cookie only travels when the origin is
	// allow-listed, so no wildcard here.
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && origin == cfg.CORS.Origin {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Connect to Redis early so the blacklist and rate limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
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

	ctx := context.Background()

	// MongoDB with retry/backoff to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if errConn == nil {
			client = c
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if client == nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts", maxAttempts)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to ensure indexes: %v", err)
	}

	userRepo := users.NewMongoRepository(db.Collection("users"))
	jobRepo := jobs.NewMongoRepository(db.Collection("jobs"))
	appRepo := applications.NewMongoRepository(db.Collection("applications"))

	usersSvc := users.NewService(userRepo)
	jobsSvc := jobs.NewService(jobRepo, userRepo, cfg.Jobs.AdminsEditAny)
	appsSvc := applications.NewService(appRepo, jobRepo, userRepo)

	// Outbound mail: fire-and-forget dispatcher, drained on shutdown
	var dispatcher *notify.Dispatcher
	if cfg.SMTP.Host != "" {
		dispatcher = notify.NewDispatcher(notify.NewSMTPMailer(cfg.SMTP), cfg.Notify.QueueSize, cfg.Notify.Timeout)
		defer dispatcher.Close()
	} else {
		logger.Warnf("SMTP not configured, email notifications disabled")
	}

	// Google sign-in id_token verifier. The insecure variant is opt-in for
	// integration tests only.
	var googleVerifier oidc.TokenVerifier
	if cfg.Google.ClientID != "" {
		v, err := oidc.NewGoogleVerifier(ctx, cfg.Google.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize Google OIDC verifier: %v", err)
		} else {
			googleVerifier = v
		}
	}
	if googleVerifier == nil && os.Getenv("ALLOW_INSECURE_TOKEN") == "true" {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		googleVerifier = oidc.NewInsecureVerifier()
	}

	// Object storage for resume/logo uploads
	var store *storage.MinIOStorage
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		store, err = storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize object storage: %v", err)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{
			"mongodb": client != nil,
			"mail":    dispatcher != nil || cfg.SMTP.Host == "",
			"storage": store != nil || os.Getenv("MINIO_ENDPOINT") == "",
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
		} else {
			deps["redis"] = true
		}
		for _, ok := range deps {
			if !ok {
				ready = false
			}
		}
		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	protect := middleware.Protect(tokens.NewVerifier(cfg.JWT.Secret), usersSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	userOnly := middleware.RequireRoles(models.RoleUser)

	api := r.Group("/api")
	handlers.NewAuthHandler(cfg, usersSvc, googleVerifier).Register(api, protect)
	handlers.NewJobsHandler(cfg, jobsSvc, usersSvc, dispatcher).Register(api, protect, adminOnly)
	handlers.NewApplicationsHandler(appsSvc, dispatcher).Register(api, protect, userOnly, adminOnly)
	handlers.NewUploadsHandler(store).Register(api, protect, adminOnly)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting jobportal API on %s", addr)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	// wait for a shutdown signal, then stop the server and drain the mail queue
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}
