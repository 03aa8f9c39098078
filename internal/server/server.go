package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/royalti/internal/artist"
	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/internal/auth"
	authdomain "github.com/smallbiznis/royalti/internal/auth/domain"
	"github.com/smallbiznis/royalti/internal/auth/session"
	"github.com/smallbiznis/royalti/internal/authorization"
	"github.com/smallbiznis/royalti/internal/cache"
	"github.com/smallbiznis/royalti/internal/catalog"
	catalogdomain "github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/smallbiznis/royalti/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/royalti/internal/dashboard/domain"
	"github.com/smallbiznis/royalti/internal/observability"
	obsmiddleware "github.com/smallbiznis/royalti/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/royalti/internal/observability/metrics"
	obstracing "github.com/smallbiznis/royalti/internal/observability/tracing"
	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/internal/providers/pdf"
	"github.com/smallbiznis/royalti/internal/ratelimit"
	"github.com/smallbiznis/royalti/internal/song"
	songdomain "github.com/smallbiznis/royalti/internal/song/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	cache.Module,
	ratelimit.Module,
	pdf.Module,
	artist.Module,
	song.Module,
	catalog.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	sessions     *session.Manager
	reference    *config.ReferenceHolder
	authsvc      authdomain.Service
	authzSvc     authorization.Service
	artistSvc    artistdomain.Service
	songSvc      songdomain.Service
	catalogSvc   catalogdomain.Service
	dashboardSvc dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Sessions     *session.Manager
	Reference    *config.ReferenceHolder
	Authsvc      authdomain.Service
	AuthzSvc     authorization.Service
	ArtistSvc    artistdomain.Service
	SongSvc      songdomain.Service
	CatalogSvc   catalogdomain.Service
	DashboardSvc dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		sessions:     p.Sessions,
		reference:    p.Reference,
		authsvc:      p.Authsvc,
		authzSvc:     p.AuthzSvc,
		artistSvc:    p.ArtistSvc,
		songSvc:      p.SongSvc,
		catalogSvc:   p.CatalogSvc,
		dashboardSvc: p.DashboardSvc,
	}
	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")
	auth.POST("/signup", s.SignUp)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.PATCH("/profile", s.AuthRequired(), s.UpdateProfile)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Reference --------
	api.GET("/reference/genres", s.authorize(authorization.ObjectReference, authorization.ActionView), s.ListGenres)
	api.GET("/reference/roles", s.authorize(authorization.ObjectReference, authorization.ActionView), s.ListRoles)
	api.GET("/reference/statuses", s.authorize(authorization.ObjectReference, authorization.ActionView), s.ListStatuses)

	// -------- Artists --------
	api.GET("/artists", s.authorize(authorization.ObjectArtist, authorization.ActionView), s.ListArtists)
	api.POST("/artists", s.authorize(authorization.ObjectArtist, authorization.ActionCreate), s.CreateArtist)
	api.GET("/artists/:id", s.authorize(authorization.ObjectArtist, authorization.ActionView), s.GetArtistByID)
	api.PATCH("/artists/:id", s.authorize(authorization.ObjectArtist, authorization.ActionUpdate), s.UpdateArtist)
	api.DELETE("/artists/:id", s.authorize(authorization.ObjectArtist, authorization.ActionDelete), s.DeleteArtist)
	api.GET("/artists/:id/catalog", s.authorize(authorization.ObjectCatalog, authorization.ActionView), s.GetArtistCatalog)
	api.DELETE("/artists/:id/catalog", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogClear), s.ClearArtistCatalog)

	// -------- Songs --------
	api.GET("/songs", s.authorize(authorization.ObjectSong, authorization.ActionView), s.ListSongs)
	api.POST("/songs", s.authorize(authorization.ObjectSong, authorization.ActionCreate), s.CreateSong)
	api.POST("/songs/ledger/preview", s.authorize(authorization.ObjectSong, authorization.ActionCreate), s.PreviewLedger)
	api.GET("/songs/:id", s.authorize(authorization.ObjectSong, authorization.ActionView), s.GetSongByID)
	api.PATCH("/songs/:id", s.authorize(authorization.ObjectSong, authorization.ActionUpdate), s.UpdateSong)
	api.DELETE("/songs/:id", s.authorize(authorization.ObjectSong, authorization.ActionDelete), s.DeleteSong)
	api.GET("/songs/:id/payouts", s.authorize(authorization.ObjectSong, authorization.ActionView), s.GetSongPayouts)
	api.GET("/songs/:id/statement.pdf", s.authorize(authorization.ObjectSong, authorization.ActionView), s.GetSongStatement)

	// -------- Dashboard --------
	api.GET("/dashboard", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.GetDashboard)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AuthRequired())
	admin.Use(s.RequireRole(principal.RoleAdmin, principal.RoleSuperAdmin))

	admin.GET("/dashboard", s.authorize(authorization.ObjectAdminDashboard, authorization.ActionView), s.GetAdminDashboard)

	// -------- Songs --------
	admin.GET("/songs", s.authorize(authorization.ObjectSong, authorization.ActionSongViewAll), s.ListAllSongs)
	admin.PATCH("/songs/:id/status", s.authorize(authorization.ObjectSong, authorization.ActionSongReview), s.UpdateSongStatus)
	admin.PATCH("/songs/:id/performance", s.authorize(authorization.ObjectSong, authorization.ActionSongPerform), s.RecordSongPerformance)

	// -------- Users --------
	admin.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionUserList), s.ListUsers)
	admin.PATCH("/users/:id/role", s.authorize(authorization.ObjectUser, authorization.ActionUserManageRole), s.UpdateUserRole)
}
