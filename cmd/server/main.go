// Package main runs the webinar platform HTTP server with WebSocket rooms and
// graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/saemahesh/webinar-ai/config"
	"github.com/saemahesh/webinar-ai/internal/admin"
	"github.com/saemahesh/webinar-ai/internal/analytics"
	"github.com/saemahesh/webinar-ai/internal/auth"
	"github.com/saemahesh/webinar-ai/internal/email"
	"github.com/saemahesh/webinar-ai/internal/emaillogs"
	"github.com/saemahesh/webinar-ai/internal/liveroom"
	"github.com/saemahesh/webinar-ai/internal/middleware"
	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/internal/realtime"
	"github.com/saemahesh/webinar-ai/internal/registrations"
	"github.com/saemahesh/webinar-ai/internal/sessionlog"
	"github.com/saemahesh/webinar-ai/internal/videos"
	"github.com/saemahesh/webinar-ai/internal/webinars"
	"github.com/saemahesh/webinar-ai/internal/worker"
	"github.com/saemahesh/webinar-ai/pkg/database"
	"github.com/saemahesh/webinar-ai/pkg/queue"
	"github.com/saemahesh/webinar-ai/pkg/redis"
	"github.com/saemahesh/webinar-ai/pkg/response"
	"github.com/saemahesh/webinar-ai/pkg/storage"
)

// roomLifecycle bridges hub occupancy to the room registry: the simulator for
// a webinar runs only while someone is connected.
type roomLifecycle struct {
	registry *liveroom.Registry
}

func (l roomLifecycle) RoomOccupied(id uuid.UUID) { l.registry.Start(id) }
func (l roomLifecycle) RoomEmptied(id uuid.UUID)  { l.registry.Stop(id) }

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			VideosBucket:         cfg.AWS.VideosBucket,
			ImagesBucket:         cfg.AWS.ImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth + admin
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	adminStatsRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(authRepo, adminStatsRepo, logger)

	// Webinars + rooms
	webinarRepo := webinars.NewRepository(pool)
	roomStore := liveroom.NewRedisStore(rdb.Client, time.Duration(cfg.Room.StateTTLHours)*time.Hour)
	registry := liveroom.NewRegistry(webinarRepo, hub, roomStore,
		time.Duration(cfg.Room.TickSeconds)*time.Second, logger)
	hub.SetRoomLifecycleHandler(roomLifecycle{registry: registry})
	webinarHandler := webinars.NewHandler(webinarRepo, hub, registry, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	registrationHandler := registrations.NewHandler(registrationRepo, webinarRepo, jobQueue, logger)

	// Room join gate
	gate := liveroom.NewGate(registrationRepo, roomStore, nil)
	var playbackURL liveroom.PlaybackURLFunc
	if s3Client != nil {
		playbackURL = func(ctx context.Context, videoKey string) (string, error) {
			return s3Client.GeneratePresignedDownloadURL(ctx, s3Client.VideosBucket(), videoKey, s3Client.PresignExpire())
		}
	}
	roomHandler := liveroom.NewHandler(webinarRepo, gate, registrationRepo, playbackURL, logger)

	// Videos
	videoHandler := videos.NewHandler(webinarRepo, s3Client, logger)

	// Session logs
	sessionLogRepo := sessionlog.NewRepository(pool)
	sessionLogHandler := sessionlog.NewHandler(sessionLogRepo)
	hub.SetLeaveHandler(func(c *realtime.Client) {
		if c.Role != "viewer" || c.Email == "" {
			return
		}
		_ = sessionLogRepo.LogLeave(context.Background(), c.WebinarID, c.Email)
	})

	// Analytics
	analyticsHandler := analytics.NewHandler(registrationRepo, sessionLogRepo, webinarRepo)

	// Email logs
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, webinarRepo, registrationRepo, jobQueue)

	// WebSocket auth: hosts/admins present a JWT, viewers a registered email.
	authorize := func(c *gin.Context, webinarID uuid.UUID) (*realtime.Identity, error) {
		if token := c.Query("token"); token != "" {
			claims, err := jwtService.Validate(token)
			if err != nil {
				return nil, err
			}
			return &realtime.Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
				Name:   "Host",
				Role:   claims.Role,
			}, nil
		}
		emailAddr := c.Query("email")
		if emailAddr == "" {
			return nil, liveroom.ErrNotRegistered
		}
		w, err := webinarRepo.GetByID(c.Request.Context(), webinarID)
		if err != nil {
			return nil, err
		}
		name := emailAddr
		if w.RequireRegistration {
			att, err := registrationRepo.GetByWebinarAndEmail(c.Request.Context(), webinarID, emailAddr)
			if err != nil {
				return nil, err
			}
			if att == nil {
				return nil, liveroom.ErrNotRegistered
			}
			name = att.FullName
		}
		_ = sessionLogRepo.LogJoin(c.Request.Context(), webinarID, nil, emailAddr)
		return &realtime.Identity{Email: emailAddr, Name: name, Role: "viewer"}, nil
	}

	// Resync snapshots for connected clients.
	statusFn := func(webinarID uuid.UUID) (interface{}, error) {
		w, err := webinarRepo.GetByID(context.Background(), webinarID)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		status, timeToStart := liveroom.ResolveStatus(w.StartsAt, w.DurationMinutes, now)
		if w.Status == models.WebinarEnded {
			status = liveroom.StatusEnded
		}
		offset := liveroom.PlaybackOffset(w.StartsAt, now)
		offset, _ = liveroom.ClampOffset(offset, w.VideoDurationSec)
		return liveroom.StatusPayload{
			Status:            status,
			TimeToStartSec:    int(timeToStart / time.Second),
			PlaybackOffsetSec: offset,
		}, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public viewer API (rate limited; no auth)
	public := router.Group("/public")
	public.Use(middleware.RateLimit(cfg.Server.PublicRateRPS, cfg.Server.PublicRateBurst))
	{
		public.GET("/webinars", webinarHandler.ListPublic)
		public.GET("/webinars/:id", webinarHandler.GetPublic)
		public.GET("/images/*key", videoHandler.ServeChatImage)
		public.POST("/webinars/:id/register", registrationHandler.Register)
		public.GET("/webinars/:id/registration", registrationHandler.CheckRegistration)
		public.POST("/webinars/:id/join", roomHandler.Join)
	}

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", middleware.JWT(jwtService), authHandler.Me)
	}

	// Admin API
	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.JWT(jwtService), middleware.RequireRole(string(models.RoleAdmin)))
	{
		adminGroup.GET("/hosts", adminHandler.ListHosts)
		adminGroup.PUT("/hosts/:id/approve", adminHandler.ApproveHost)
		adminGroup.PUT("/hosts/:id/reject", adminHandler.RejectHost)
		adminGroup.DELETE("/hosts/:id", adminHandler.DeleteHost)
		adminGroup.GET("/stats", adminHandler.PlatformStats)
	}

	// Host API (JWT + approved account)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService),
		middleware.RequireRole(string(models.RoleAdmin), string(models.RoleHost)),
		middleware.RequireApproved())
	{
		api.GET("/webinars", webinarHandler.List)
		api.POST("/webinars", webinarHandler.Create)
		api.GET("/webinars/:id", webinarHandler.GetByID)
		api.PUT("/webinars/:id", webinarHandler.Update)
		api.DELETE("/webinars/:id", webinarHandler.Delete)
		api.PUT("/webinars/:id/status", webinarHandler.SetStatus)
		api.PUT("/webinars/:id/scheduled-messages", webinarHandler.SetScheduledMessages)

		api.GET("/webinars/:id/attendees", registrationHandler.ListByWebinar)
		api.GET("/webinars/:id/sessions", sessionLogHandler.ListByWebinar)
		api.GET("/webinars/:id/analytics", analyticsHandler.GetByWebinar)
		api.GET("/webinars/:id/emails", emailLogsHandler.ListByWebinar)
		api.POST("/webinars/:id/emails/resend", emailLogsHandler.Resend)

		api.POST("/webinars/:id/video", videoHandler.Upload)
		api.PUT("/webinars/:id/video", videoHandler.Attach)
		api.POST("/webinars/:id/video/upload-url", videoHandler.GenerateUploadURL)
		api.DELETE("/webinars/:id/video", videoHandler.Delete)
		api.POST("/webinars/:id/chat-image", videoHandler.UploadChatImage)
	}

	// WebSocket (auth via query params)
	router.GET("/ws", realtime.ServeWs(hub, logger, authorize, statusFn))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process email worker; the standalone worker binary covers multi-node
	// deployments.
	var sender email.Sender
	if cfg.Email.SendGridAPIKey != "" {
		sender = email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress)
	} else {
		sender = email.NewConsoleSender(logger)
	}
	emailProcessor := worker.NewEmailProcessor(emailLogsRepo, sender, jobQueue, logger)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go emailProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	registry.StopAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
