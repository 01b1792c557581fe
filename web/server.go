package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medialoom/media-services/cache"
	"github.com/medialoom/media-services/models/common"
	"github.com/medialoom/media-services/network"
	"github.com/medialoom/media-services/upload"
	"github.com/op/go-logging"
)

// uploadFormOverhead is how much multipart framing and form fields we
// allow beyond the file size limit before cutting off a request body.
const uploadFormOverhead = int64(10 * 1024 * 1024)

// Server is the HTTP surface of the relay. It owns the gin engine,
// the upload pipeline, and the cache fill coordinator; everything it
// needs arrives through the application context, never through
// package globals.
type Server struct {
	config      *common.Config
	coordinator *cache.FillCoordinator
	engine      *gin.Engine
	logger      *logging.Logger
	pipeline    *upload.Pipeline
}

func NewServer(context *common.Context) (*Server, error) {
	return NewServerWithStores(context.Config, context.RedisClient,
		context.RemoteStore, context.Logger)
}

// NewServerWithStores wires the server against explicit store
// implementations. Tests use this with fakes; NewServer is the
// production path.
func NewServerWithStores(config *common.Config, metadata network.MetadataStore, remote network.RemoteStore, logger *logging.Logger) (*Server, error) {
	diskCache, err := cache.NewDiskCache(config.CacheDir, config.MaxCacheEntries, logger)
	if err != nil {
		return nil, err
	}
	server := &Server{
		config: config,
		coordinator: cache.NewFillCoordinator(
			diskCache, metadata, remote, logger),
		logger: logger,
		pipeline: upload.NewPipeline(
			config.TempDir,
			config.MaxFileSize,
			config.AllowedExtensions,
			metadata,
			remote,
			logger),
	}
	server.engine = server.buildEngine()
	return server, nil
}

func (s *Server) buildEngine() *gin.Engine {
	if s.config.ConfigName != "dev" && s.config.ConfigName != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/", s.handleHealth)
	engine.GET("/medialoom", s.handleFrontend)
	engine.POST("/upload", s.limitBodySize, s.handleUpload)
	engine.GET("/file/:name", s.handleServeFile)
	return engine
}

// Engine exposes the router for tests and for embedding.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 30 * time.Second,
	}
	s.logger.Infof("MediaLoom listening on %s", addr)
	return srv.ListenAndServe()
}

// limitBodySize caps the upload request body at the file size limit
// plus form overhead. The pipeline still enforces the exact limit
// chunk by chunk; this bound just stops a hostile body from streaming
// past it at the transport layer.
func (s *Server) limitBodySize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body,
		s.config.MaxFileSize+uploadFormOverhead)
	c.Next()
}
