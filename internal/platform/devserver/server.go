// Package devserver is a stand-in for the synthfhir generation backend. It
// serves the same HTTP surface with deterministic placeholder records so the
// client can be exercised without an LLM, a vector store or the FHIR
// sandbox.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/internal/platform/middleware"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

const (
	serviceName      = "SynthFHIR API"
	defaultActiveLLM = "gemini"
	enterpriseLLM    = "enterprise"

	defaultBodyLimit = "10M"
	uploadBodyLimit  = "50M"
)

// Options configures a Server. Zero values are usable: the catalog defaults
// to DefaultCatalog, exports go to an in-memory store and the enterprise LLM
// is reported as not configured.
type Options struct {
	Catalog     *contract.AppConfig
	Files       blobstore.Store
	CORSOrigins []string

	EnterpriseBaseURL      string
	EnterpriseClientID     string
	EnterpriseClientSecret string

	// Now stamps health and generation responses. Defaults to time.Now.
	Now func() time.Time
}

// Server is the dev backend. Handler exposes it for httptest; Start and
// Shutdown run it on a real listener.
type Server struct {
	echo      *echo.Echo
	opts      Options
	catalog   *contract.AppConfig
	files     blobstore.Store
	knowledge *knowledgeIndex
	logger    zerolog.Logger
}

// New builds the Echo application and registers every route.
func New(opts Options, logger zerolog.Logger) *Server {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Files == nil {
		opts.Files = blobstore.NewInMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		echo:      echo.New(),
		opts:      opts,
		catalog:   opts.Catalog,
		files:     opts.Files,
		knowledge: newKnowledgeIndex(),
		logger:    logger.With().Str("component", "devserver").Logger(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = middleware.ErrorHandler(s.logger)

	s.echo.Use(middleware.Recovery(s.logger))
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.Logger(s.logger))
	s.echo.Use(middleware.BodyLimit(defaultBodyLimit, uploadBodyLimit))
	if len(opts.CORSOrigins) > 0 {
		s.echo.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
		}))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)

	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/config", s.handleConfig)
	api.POST("/generate", s.handleGenerate)

	kb := api.Group("/knowledge")
	kb.GET("/status", s.handleKnowledgeStatus)
	kb.POST("/index", s.handleIndex)
	kb.POST("/index/all", s.handleIndexAll)
	kb.POST("/upload", s.handleUpload)

	api.GET("/llm/status", s.handleLLMStatus)
	api.POST("/export/:resource", s.handleExport)

	blobstore.NewHandler(s.files).RegisterRoutes(api)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting dev server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down dev server")
	return s.echo.Shutdown(ctx)
}
