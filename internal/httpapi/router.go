package httpapi

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adverant/nexus/prescription-ocr/internal/logging"
	"github.com/adverant/nexus/prescription-ocr/internal/processor"
)

// Analyzer is the part of processor.PrescriptionAnalyzer the handlers use
type Analyzer interface {
	Analyze(ctx context.Context, image io.Reader) *processor.AnalysisResult
	Recognize(ctx context.Context, image io.Reader) (*processor.Recognition, error)
}

// Handler serves the prescription endpoints
type Handler struct {
	analyzer Analyzer
	logger   *logging.Logger
}

func NewHandler(analyzer Analyzer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewLogger("HTTP")
	}
	return &Handler{analyzer: analyzer, logger: logger}
}

// NewRouter wires the routes onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/prescriptions")
	api.POST("/analyze", h.Analyze)
	api.POST("/recognize", h.Recognize)

	return r
}

// Analyze handles POST /api/prescriptions/analyze
func (h *Handler) Analyze(c *gin.Context) {
	file, ok := h.openImage(c)
	if !ok {
		return
	}
	defer file.Close()

	result := h.analyzer.Analyze(c.Request.Context(), file)
	switch {
	case result == nil:
		c.Status(http.StatusNoContent)
	case !result.Success:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"data":    result.Message,
			"reason":  result.Reason,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result.Medications,
		})
	}
}

// Recognize handles POST /api/prescriptions/recognize
func (h *Handler) Recognize(c *gin.Context) {
	file, ok := h.openImage(c)
	if !ok {
		return
	}
	defer file.Close()

	recognition, err := h.analyzer.Recognize(c.Request.Context(), file)
	if err != nil {
		h.logger.Error("Recognition failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"data":    processor.FailureMessage,
		})
		return
	}

	c.JSON(http.StatusOK, recognition)
}

func (h *Handler) openImage(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded image", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file could not be read"})
		return nil, false
	}

	return file, true
}
