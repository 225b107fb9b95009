package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/TheZimbabwe/producto-transversal/api/auth"
	"github.com/TheZimbabwe/producto-transversal/api/handler"
	"github.com/TheZimbabwe/producto-transversal/config"
	"github.com/TheZimbabwe/producto-transversal/database"
	"github.com/TheZimbabwe/producto-transversal/web"
)

const (
	dashboardLoginWarning = "Por favor, inicia sesión para acceder al panel principal."
	profileLoginWarning   = "Por favor, inicia sesión para acceder a tu perfil."
)

type Server struct {
	cfg         *config.Config
	ginEngine   *gin.Engine
	authService *auth.Service
	handler     *handler.Handler
}

func New(cfg *config.Config, db *database.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	authService := auth.NewService(db)

	s := &Server{
		cfg:         cfg,
		ginEngine:   gin.Default(),
		authService: authService,
		handler:     handler.New(db, authService),
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("producto_session", store))
}

func (s *Server) setupRoutes() error {
	s.setupSession()
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	// Remember-me cookie bootstrap runs before every request.
	s.ginEngine.Use(s.authService.RememberMe())

	s.ginEngine.SetHTMLTemplate(web.Templates())

	staticFS, err := web.StaticFS()
	if err != nil {
		return fmt.Errorf("failed to load static assets: %w", err)
	}
	s.ginEngine.StaticFS("/static", http.FS(staticFS))

	s.ginEngine.GET("/", s.handler.Index)
	s.ginEngine.GET("/register", s.handler.ShowRegister)
	s.ginEngine.POST("/register", s.handler.Register)
	s.ginEngine.GET("/login", s.handler.ShowLogin)
	s.ginEngine.POST("/login", s.handler.Login)
	s.ginEngine.GET("/logout", s.handler.Logout)

	dashboard := s.ginEngine.Group("/dashboard")
	dashboard.Use(s.authService.RequireAuth(dashboardLoginWarning))
	dashboard.GET("", s.handler.Dashboard)

	profile := s.ginEngine.Group("/profile")
	profile.Use(s.authService.RequireAuth(profileLoginWarning))
	profile.GET("", s.handler.ShowProfile)
	profile.POST("", s.handler.UpdateProfile)

	return nil
}

// Engine exposes the underlying router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.ginEngine
}

func (s *Server) Run() error {
	return s.ginEngine.Run(s.cfg.Listen)
}
