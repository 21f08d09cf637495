package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/middlewares"
	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/mmdatafocus/restaurant_backend/models/reports"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultPort = "8080"

type routerDeps struct {
	service   *reports.Service
	jwtSecret []byte
	limiter   *middlewares.RateLimiter
	// ready gates every route except /healthz
	ready func() bool
}

func newRouter(deps routerDeps, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		// /healthz answers even before the DB is up.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if deps.ready != nil && !deps.ready() {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	if allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); allowedOrigins != "" {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
	} else if strings.EqualFold(os.Getenv("GO_ENV"), "production") {
		// deny all if not configured in production
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationIdHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationIdHeader)
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	r.Use(cors.New(corsConfig))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	reportRoles := models.ReportRoles()
	group := r.Group("/reports",
		middlewares.AuthMiddleware(deps.jwtSecret),
		middlewares.SessionMiddleware(),
		deps.limiter.RateLimitMiddleware,
		middlewares.RequireRoles(reportRoles...),
	)
	group.POST("/sales", salesReportHandler(deps.service))
	group.POST("/sales/export", salesReportExportHandler(deps.service))
	group.GET("/dashboard", dashboardHandler(deps.service))

	r.NoRoute(customNotFoundHandler)
	return r
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if strings.EqualFold(os.Getenv("GO_ENV"), "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var limiter *middlewares.RateLimiter
	if config.RateLimitEnabled() {
		limit, window := config.RateLimit()
		client := redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		defer client.Close()
		limiter = middlewares.NewRateLimiter(client, limit, window)
	}

	// "today" and the order day must agree on one zone
	loc := config.ReportLocation()
	// the source resolves the connection per query, so it can exist before the DB does
	service := reports.NewService(reports.NewGormLineSource(nil, config.PhoneRegion(), loc), reports.WithLocation(loc))
	r := newRouter(routerDeps{
		service:   service,
		jwtSecret: config.JwtSecret(),
		limiter:   limiter,
		ready:     func() bool { return config.GetDB() != nil },
	}, logger)

	// Start listening immediately; requests get 503 until the DB is ready.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	// redis backs token revocation as well as the report cache
	if config.RedisEnabled() {
		config.ConnectRedisWithRetry(sigCtx)
	} else {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("REDIS_ADDRESS not set; revoked tokens are not checked")
	}

	sqlDB := sqlHandle(config.GetDB(), logger)
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can lock tables; run it as a separate job in production.
	if !config.SkipMigrations() {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("sales report service listening on :", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// sqlHandle returns the pool behind conn so main can close it on shutdown.
func sqlHandle(conn *gorm.DB, logger *logrus.Logger) *sql.DB {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		config.LogError(logger, "main", "sqlHandle", "sql db handle", nil, err)
		return nil
	}
	return sqlDB
}

// customErrorLogger logs only requests that recorded errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.WithFields(logrus.Fields{
				"path":   c.FullPath(),
				"status": c.Writer.Status(),
			}).Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
