package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/files"
	"github.com/poiesic/docvault/search"
	"github.com/poiesic/docvault/upload"
)

// Server exposes the HTTP surface over the file service, upload session
// manager and searcher.
type Server struct {
	files    *files.Service
	uploads  *upload.Manager
	searcher *search.Searcher
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates the HTTP server facade.
func New(fileSvc *files.Service, uploads *upload.Manager, searcher *search.Searcher, opts ...Option) (*Server, error) {
	if fileSvc == nil {
		return nil, ErrFilesRequired
	}
	if uploads == nil {
		return nil, ErrUploadsRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		files:    fileSvc,
		uploads:  uploads,
		searcher: searcher,
		logger:   slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/get/:id", s.getFile)

	fg := r.Group("/files")
	{
		fg.POST("/upload", s.uploadFile)
		fg.GET("/list", s.listFiles)
		fg.GET("/:id/status", s.fileStatus)
		fg.POST("/:id/query", s.queryFile)
		fg.DELETE("/delete/:id", s.deleteFile)

		ug := fg.Group("/uploads")
		{
			ug.POST("/start", s.startUpload)
			ug.POST("/:id/append", s.appendUpload)
			ug.POST("/:id/complete", s.completeUpload)
		}
	}

	return r
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, files.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrSessionNotUploading):
		status = http.StatusConflict
	case errors.Is(err, files.ErrFilenameRequired),
		errors.Is(err, upload.ErrFilenameRequired),
		errors.Is(err, core.ErrInvalidRecord),
		errors.Is(err, core.ErrMissingField):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
