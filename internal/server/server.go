// Package server exposes the engine over HTTP, with note events streamed as
// Server-Sent Events.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leandrodaf/homados/sdk/contracts"
)

const (
	clientBuffer    = 64
	shutdownTimeout = 5 * time.Second
)

// Server routes HTTP requests to an engine.
type Server struct {
	engine contracts.Engine
	logger contracts.Logger
	hub    *hub
	router *gin.Engine
}

type connectRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
}

type playRequest struct {
	Notes  []contracts.Note `json:"notes" binding:"dive"`
	Volume *float64         `json:"volume"`
}

type previewRequest struct {
	Note     uint8   `json:"note" binding:"max=127"`
	Velocity uint8   `json:"velocity" binding:"max=127"`
	Volume   float64 `json:"volume" binding:"min=0"`
}

// New builds the router and starts forwarding engine events to stream clients.
func New(engine contracts.Engine, logger contracts.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: engine,
		logger: logger,
		hub:    newHub(clientBuffer, logger),
		router: gin.New(),
	}
	go s.hub.run(engine.Events())

	r := s.router
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := r.Group("/api")
	api.GET("/devices", s.listDevices)
	api.GET("/tracks", s.listTracks)
	api.PUT("/tracks/:trackId/input", s.connect)
	api.DELETE("/tracks/:trackId/input", s.disconnect)
	api.POST("/tracks/:trackId/recording/start", s.startRecording)
	api.POST("/tracks/:trackId/recording/stop", s.stopRecording)
	api.POST("/playback", s.play)
	api.POST("/playback/stop", s.stopPlayback)
	api.POST("/preview", s.preview)
	api.GET("/events", s.streamEvents)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", s.logger.Field().String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) listDevices(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ListDevices())
}

func (s *Server) listTracks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tracks": s.engine.Tracks()})
}

func (s *Server) connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.Connect(c.Param("trackId"), req.DeviceID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) disconnect(c *gin.Context) {
	s.engine.Disconnect(c.Param("trackId"))
	c.Status(http.StatusNoContent)
}

func (s *Server) startRecording(c *gin.Context) {
	if err := s.engine.StartRecording(c.Param("trackId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stopRecording(c *gin.Context) {
	notes, err := s.engine.StopRecording(c.Param("trackId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if notes == nil {
		notes = []contracts.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (s *Server) play(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	volume := 1.0
	if req.Volume != nil {
		volume = *req.Volume
	}
	s.engine.Play(req.Notes, volume)
	c.Status(http.StatusAccepted)
}

func (s *Server) stopPlayback(c *gin.Context) {
	s.engine.StopPlayback()
	c.Status(http.StatusNoContent)
}

func (s *Server) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.engine.PreviewNote(req.Note, req.Velocity, req.Volume)
	c.Status(http.StatusAccepted)
}

func (s *Server) streamEvents(c *gin.Context) {
	events, ok := s.hub.subscribe()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine closed"})
		return
	}
	defer s.hub.unsubscribe(events)

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("midi-note", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contracts.ErrInvalidDeviceID):
		status = http.StatusBadRequest
	case errors.Is(err, contracts.ErrPortUnavailable), errors.Is(err, contracts.ErrNotConnected):
		status = http.StatusNotFound
	case errors.Is(err, contracts.ErrConnection):
		status = http.StatusBadGateway
	}
	s.logger.Debug("Request failed",
		s.logger.Field().String("path", c.FullPath()),
		s.logger.Field().Error("error", err))
	c.JSON(status, gin.H{"error": err.Error()})
}
