package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/fileshare-go/api/controllers"
	"github.com/moyoez/fileshare-go/api/middlewares"
	"github.com/moyoez/fileshare-go/api/notifyhub"
	"github.com/moyoez/fileshare-go/process"
	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
	"github.com/moyoez/fileshare-go/types"
)

// Server represents the HTTP API server for the file sharing service.
type Server struct {
	cfg    types.AppConfig
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex

	coordinator *Coordinator
	catalog     *storage.Catalog
	archiver    *storage.Archiver
	hub         *notifyhub.Hub
}

// NewServer assembles a server over the given components.
func NewServer(cfg types.AppConfig, coordinator *Coordinator, catalog *storage.Catalog, archiver *storage.Archiver, hub *notifyhub.Hub) *Server {
	return &Server{
		cfg:         cfg,
		coordinator: coordinator,
		catalog:     catalog,
		archiver:    archiver,
		hub:         hub,
	}
}

// NewDefaultServer wires the whole pipeline from config: namer, policy,
// writer, converter pool, catalog, archiver, event hub. The converter is nil
// when conversion is disabled.
func NewDefaultServer(cfg types.AppConfig, converter *process.Converter, namer *storage.Namer, hub *notifyhub.Hub) *Server {
	policy := storage.NewPolicy(cfg)
	writer := storage.NewWriter(cfg.UploadDir, cfg.MaxFileSize)

	var states storage.StateSource
	var notify process.Notifier
	if converter != nil {
		states = converter
	}
	if hub != nil {
		notify = hub
	}

	catalog := storage.NewCatalog(cfg.UploadDir, policy, states)
	archiver := storage.NewArchiver(catalog)
	coordinator := NewCoordinator(policy, namer, writer, converter, notify, cfg.ConcurrentWrites)

	return NewServer(cfg, coordinator, catalog, archiver, hub)
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.AllowAllCORS())
	engine.Use(middlewares.RateLimit(s.cfg.RateLimitRPS))

	var notify process.Notifier
	if s.hub != nil {
		notify = s.hub
	}
	uploadCtrl := controllers.NewUploadController(s.coordinator)
	filesCtrl := controllers.NewFilesController(s.catalog, notify)
	downloadCtrl := controllers.NewDownloadController(s.archiver)
	statusCtrl := controllers.NewStatusController(s.catalog)
	qrCtrl := controllers.NewQRCodeController(s.cfg.ShareURL)

	engine.GET("/", statusCtrl.HandleStatus)
	engine.POST("/upload", uploadCtrl.HandleUpload)
	engine.GET("/files", filesCtrl.HandleList)
	engine.GET("/files/:filename", filesCtrl.HandleGet)
	engine.DELETE("/files/:filename", filesCtrl.HandleDelete)
	engine.GET("/download", downloadCtrl.HandleDownload)
	engine.GET("/qr", qrCtrl.HandleQRCode)
	if s.hub != nil {
		engine.GET("/events", notifyhub.HandleEventsWS(s.hub))
	}

	return engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: engine,
	}
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on http://0.0.0.0:%d", s.cfg.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting new requests and waits for in-flight ones, up to
// the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
