package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/engine"
	"github.com/genricoloni/albumplayer/internal/library"
	"github.com/genricoloni/albumplayer/internal/processor"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Player is the command surface the HTTP API drives
type Player interface {
	Dispatch(ctx context.Context, cmd engine.Command) error
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Server exposes the song library and the player over HTTP
type Server struct {
	logger    *zap.Logger
	cfg       domain.Config
	directory domain.Directory
	catalog   domain.Catalog
	covers    domain.CoverProcessor
	player    Player
	router    *gin.Engine

	mu   sync.Mutex
	http *http.Server
	addr string
}

// NewServer creates the HTTP server and registers its routes
func NewServer(
	logger *zap.Logger,
	cfg domain.Config,
	directory domain.Directory,
	catalog domain.Catalog,
	covers domain.CoverProcessor,
	player Player,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger:    logger,
		cfg:       cfg,
		directory: directory,
		catalog:   catalog,
		covers:    covers,
		player:    player,
		router:    gin.New(),
	}
	s.router.Use(gin.Recovery(), requestLogger(logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/songs/*path", s.handleSongs)

	api := s.router.Group("/api")
	api.GET("/albums", s.handleAlbums)
	api.GET("/albums/:folder/cover", s.handleCover)

	p := api.Group("/player")
	p.GET("", s.handleState)
	p.POST("/album", s.handleSelectAlbum)
	p.POST("/track", s.handlePlayTrack)
	p.POST("/toggle", s.handleCommand(engine.TogglePause))
	p.POST("/next", s.handleCommand(engine.Next))
	p.POST("/previous", s.handleCommand(engine.Previous))
	p.POST("/seek", s.handleSeek)
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves in a goroutine
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.GetListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.GetListenAddr(), err)
	}

	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.addr = ln.Addr().String()

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}(s.http)

	s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.http = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// handleSongs serves files from the library directory; albums.json is generated when absent
func (s *Server) handleSongs(c *gin.Context) {
	rel := path.Clean("/" + c.Param("path"))
	root := s.cfg.GetLibraryDir()

	if rel == "/"+library.ManifestFile {
		data, err := library.ManifestJSON(s.logger, root)
		if err != nil {
			s.logger.Warn("Failed to serve manifest", zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "manifest unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found: " + rel})
		return
	}
	c.File(full)
}

func (s *Server) handleAlbums(c *gin.Context) {
	albums, err := s.directory.ListAlbums(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": albums})
}

func (s *Server) handleCover(c *gin.Context) {
	folder := c.Param("folder")
	mode := c.DefaultQuery("mode", processor.ModeThumb)

	cover := c.Query("cover")
	if cover == "" {
		info, err := s.catalog.LoadInfo(c.Request.Context(), folder)
		if err != nil {
			s.fail(c, err)
			return
		}
		cover = info.Cover
	}

	data, err := s.covers.Generate(c.Request.Context(), folder, cover, mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "max-age=3600")
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (s *Server) handleState(c *gin.Context) {
	snap, err := s.player.Snapshot(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type selectAlbumRequest struct {
	Folder string `json:"folder" binding:"required"`
}

func (s *Server) handleSelectAlbum(c *gin.Context) {
	var req selectAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.run(c, engine.SelectAlbum(req.Folder))
}

// playTrackRequest names the track either by file name or by position
type playTrackRequest struct {
	Track *string `json:"track"`
	Index *int    `json:"index"`
}

func (s *Server) handlePlayTrack(c *gin.Context) {
	var req playTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case req.Track != nil:
		s.run(c, engine.PlayTrack(*req.Track))
	case req.Index != nil:
		s.run(c, engine.PlayIndex(*req.Index))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "track or index is required"})
	}
}

type seekRequest struct {
	Fraction *float64 `json:"fraction" binding:"required"`
}

func (s *Server) handleSeek(c *gin.Context) {
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.run(c, engine.Seek(*req.Fraction))
}

func (s *Server) handleCommand(build func() engine.Command) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.run(c, build())
	}
}

// run dispatches cmd and replies with the resulting snapshot
func (s *Server) run(c *gin.Context, cmd engine.Command) {
	ctx := c.Request.Context()
	if err := s.player.Dispatch(ctx, cmd); err != nil {
		s.fail(c, err)
		return
	}

	snap, err := s.player.Snapshot(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrMetadataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrNoFolder),
		errors.Is(err, domain.ErrUnknownDuration),
		errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPlaybackRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs each request with zap
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Progress polling and library reads are too chatty for info level
		level := logger.Debug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = logger.Warn
		} else if c.Request.Method != http.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/songs/") {
			level = logger.Info
		}

		level("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
