package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventdesk/internal/attendance"
	"eventdesk/internal/auth"
	"eventdesk/internal/checkin"
	"eventdesk/internal/config"
	"eventdesk/internal/directory"
	"eventdesk/internal/guest"
	"eventdesk/internal/httpmiddleware"
	"eventdesk/internal/queue"
	"eventdesk/internal/registration"
	"eventdesk/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "eventdesk:announcements")
	}

	dir := directory.NewService(directory.NewPostgresRepository(db.Client))
	ledger := attendance.NewService(attendance.NewPostgresRepository(db.Client), dir, q)
	sessions := checkin.NewManager(dir, ledger)
	guests := guest.NewService(guest.NewPostgresRepository(db.Client))
	regs := registration.NewService(
		registration.NewPostgresRepository(db.Client, cfg.StudentIDPrefix), cfg.EventCapacity)

	// A restarted server picks up the day in progress.
	if err := ledger.SyncTotals(context.Background()); err != nil {
		log.Printf("warning: could not sync today's totals: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(securityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/auth/login", loginHandler(cfg))

	// The public form gets its own rate limit; staff tooling is unthrottled.
	public := r.Group("/v1",
		httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	staff := r.Group("/v1", auth.StaffAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	admin := staff.Group("", auth.RequireRole(auth.RoleAdmin))

	registration.RegisterRoutes(public, admin, regs)
	directory.RegisterRoutes(staff, dir)
	checkin.RegisterRoutes(staff, sessions)
	attendance.RegisterRoutes(staff, admin, ledger)
	guest.RegisterRoutes(staff, admin, guests)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// loginHandler exchanges a shared access key for a staff or admin JWT pair.
func loginHandler(cfg config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StaffID   string `json:"staff_id" binding:"required"`
			AccessKey string `json:"access_key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var role string
		switch req.AccessKey {
		case cfg.AdminAccessKey:
			role = auth.RoleAdmin
		case cfg.StaffAccessKey:
			role = auth.RoleStaff
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access key"})
			return
		}

		tokens, err := auth.Issue(req.StaffID, role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
			"role":          role,
		})
	}
}

// securityHeaders sets the usual browser hardening headers.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
