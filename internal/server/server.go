// ABOUTME: HTTP surface for question answering and image serving
// ABOUTME: gin router with request IDs and zerolog access logging
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harper/urban-lens/internal/core"
	"github.com/harper/urban-lens/internal/models"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// Lens is the question-answering surface the handlers call into
type Lens interface {
	Ask(ctx context.Context, question string, k int) (*models.Answer, error)
	IndexSize() int
}

// AskRequest is the body of POST /ask
type AskRequest struct {
	Question string `json:"question"`
	K        *int   `json:"k,omitempty"`
}

type handlers struct {
	lens     Lens
	imageDir string
	defaultK int
	log      zerolog.Logger
}

// New builds the router. Images are served from imageDir by base name only.
func New(lens Lens, imageDir string, defaultK int, lg zerolog.Logger) *gin.Engine {
	if defaultK < 1 {
		defaultK = 3
	}
	h := &handlers{lens: lens, imageDir: imageDir, defaultK: defaultK, log: lg}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(lg))

	router.GET("/", h.liveness)
	router.GET("/healthz", h.health)
	router.POST("/ask", h.ask)
	router.GET("/images/:name", h.image)

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(lg zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		lg.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (h *handlers) liveness(c *gin.Context) {
	c.String(http.StatusOK, "urban-lens is running")
}

func (h *handlers) health(c *gin.Context) {
	size := h.lens.IndexSize()
	status := "ok"
	if size == 0 {
		status = "not_ready"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "indexed": size})
}

func (h *handlers) ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a question field"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	k := h.defaultK
	if req.K != nil {
		k = *req.K
	}

	answer, err := h.lens.Ask(c.Request.Context(), req.Question, k)
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("ask failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []models.Metadata{}
	}
	c.JSON(http.StatusOK, gin.H{
		"response": answer.Response,
		"sources":  sources,
	})
}

func statusFor(err error) int {
	var precondition *core.PreconditionError
	switch {
	case errors.As(err, &precondition):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrEmptyQuestion), errors.Is(err, core.ErrInvalidK):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) image(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image name"})
		return
	}

	path := filepath.Join(h.imageDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.File(path)
}
