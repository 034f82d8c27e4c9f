package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
)

// CommandRequest is the body of a command POST.
type CommandRequest struct {
	CommandType core.CommandType `json:"command_type" binding:"required"`
}

// SetupRoutes registers the API on router.
func (s *Server) SetupRoutes(router *gin.Engine) {
	router.Use(CORSMiddleware(s.origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		devices := api.Group("/devices")
		{
			devices.GET("", s.getDevices)
			devices.GET("/:id/media", s.getMedia)
			devices.POST("/:id/commands", s.postCommand)
		}
	}
}

func (s *Server) getDevices(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	devices, err := dashboard.FetchDevices(ctx, s.backend, s.devicesTable)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse(err.Error()))
		return
	}
	if devices == nil {
		devices = []core.Device{}
	}
	c.JSON(http.StatusOK, SuccessResponse(devices))
}

func (s *Server) getMedia(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	device, ok := s.lookupDevice(c)
	if !ok {
		return
	}

	files, err := dashboard.LoadMedia(ctx, s.backend, device.DeviceID)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse(err.Error()))
		return
	}
	if files == nil {
		files = []core.MediaFile{}
	}
	c.JSON(http.StatusOK, SuccessResponse(files))
}

func (s *Server) postCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("command_type is required"))
		return
	}

	device, ok := s.lookupDevice(c)
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.dispatcher.Send(ctx, device, req.CommandType); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse(core.Command{
		DeviceUUID:  device.ID,
		CommandType: req.CommandType,
	}))
}

// lookupDevice resolves the :id parameter against the registry. It writes
// the error reply itself and reports false when there is no match.
func (s *Server) lookupDevice(c *gin.Context) (core.Device, bool) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	devices, err := dashboard.FetchDevices(ctx, s.backend, s.devicesTable)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse(err.Error()))
		return core.Device{}, false
	}

	device, err := dashboard.FindDevice(devices, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse(err.Error()))
		return core.Device{}, false
	}
	return device, true
}

// CORSMiddleware admits requests without an Origin header and requests from
// the listed origins. Any other browser origin gets 403, preflight included.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if !lo.Contains(allowed, origin) {
			log.Warn().Str("origin", origin).Str("path", c.Request.URL.Path).Msg("cross-origin request refused")
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse("origin not allowed"))
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger logs each request through zerolog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
