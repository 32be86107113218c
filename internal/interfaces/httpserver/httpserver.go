package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"searchhub/internal/domain/search"
	"searchhub/internal/interfaces/httpserver/middlewares"
)

// searchRequest is the POST /v1/search body.
type searchRequest struct {
	Query      string            `json:"query" binding:"required"`
	MaxResults int               `json:"max_results"`
	Offset     int               `json:"offset"`
	Engines    []string          `json:"engines"`
	Extra      map[string]string `json:"extra"`
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// New builds the gin engine with all routes registered.
func New(service *search.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.CORS())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "searchhub"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": "searchhub"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/search", handleSearch(service))
	v1.GET("/stats", handleStats(service))
	v1.GET("/connections", handleConnections(service))

	return router
}

func handleSearch(service *search.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		engines := make([]search.EngineType, 0, len(req.Engines))
		for _, name := range req.Engines {
			engines = append(engines, search.EngineType(name))
		}

		resp, err := service.Search(c.Request.Context(), search.Query{
			Q:          req.Query,
			MaxResults: req.MaxResults,
			Offset:     req.Offset,
			Engines:    engines,
			Extra:      req.Extra,
		})
		if err != nil {
			c.Error(err)
			c.JSON(statusFor(err), errorResponse{Error: err.Error(), Type: errorType(err)})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func handleStats(service *search.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.Stats())
	}
}

func handleConnections(service *search.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.TestAllConnections(c.Request.Context()))
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case search.IsErrorType(err, search.ErrorTypeRateLimit), search.IsErrorType(err, search.ErrorTypeQuota):
		return http.StatusTooManyRequests
	case search.IsErrorType(err, search.ErrorTypeConfig):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func errorType(err error) string {
	var engineErr *search.EngineError
	if errors.As(err, &engineErr) {
		return string(engineErr.Type)
	}
	return ""
}
