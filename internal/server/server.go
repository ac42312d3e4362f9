package server

import (
	"context"
	"net/http"
	"time"

	logdomain "github.com/indrajit912/hermes/internal/apilog/domain"
	"github.com/indrajit912/hermes/internal/config"
	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"github.com/indrajit912/hermes/internal/identity"
	"github.com/indrajit912/hermes/internal/mailer"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	db        *gorm.DB
	log       *zap.Logger
	resolver  *identity.Resolver
	users     userdomain.Service
	usersRepo userdomain.Repository
	bots      botdomain.Service
	logs      logdomain.Service
	transport mailer.Transport
	metrics   *HTTPMetrics
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Resolver  *identity.Resolver
	Users     userdomain.Service
	UsersRepo userdomain.Repository
	Bots      botdomain.Service
	Logs      logdomain.Service
	Transport mailer.Transport
	Metrics   *HTTPMetrics
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		db:        p.DB,
		log:       p.Log.Named("http.server"),
		resolver:  p.Resolver,
		users:     p.Users,
		usersRepo: p.UsersRepo,
		bots:      p.Bots,
		logs:      p.Logs,
		transport: p.Transport,
		metrics:   p.Metrics,
	}
}

// RegisterRoutes wires the user-facing and admin API surfaces.
func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api/v1")
	api.POST("/register", s.Register)

	authed := api.Group("")
	authed.Use(s.RequireApprovedUser())
	authed.GET("/profile", s.GetProfile)
	authed.POST("/profile/rotate-key", s.RotateOwnKey)
	authed.POST("/emailbot", s.CreateEmailBot)
	authed.GET("/emailbot", s.ListEmailBots)
	authed.PUT("/emailbot/:bot_id", s.UpdateEmailBot)
	authed.DELETE("/emailbot/:bot_id", s.DeleteEmailBot)
	authed.GET("/logs", s.GetLogs)
	authed.POST("/send-email", s.SendEmail)

	admin := api.Group("/admin")
	admin.Use(s.RequireAdmin())
	admin.POST("/approve-user/:user_id", s.ApproveUser)
	admin.GET("/users", s.ListUsers)
	admin.GET("/users/:user_id", s.GetUser)
	admin.DELETE("/users/:user_id", s.DeleteUser)
	admin.POST("/users/:user_id/block", s.BlockUser)
	admin.POST("/users/:user_id/unblock", s.UnblockUser)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
