// Package server exposes a parser over HTTP.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	pcfg "github.com/ling0322/pcfgparser"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	// maxSentenceLength bounds the work of a single request, in bytes
	maxSentenceLength = 4096
)

// ParseRequest is the body of POST /parse
type ParseRequest struct {
	Sentence  string `json:"sentence"`
	Algorithm string `json:"algorithm,omitempty"` // Defaults to the parser's algorithm
}

// ParseResponse is the body of a successful POST /parse
type ParseResponse struct {
	Tree        *pcfg.Tree `json:"tree"`
	Probability float64    `json:"probability"`
	Algorithm   string     `json:"algorithm"`
}

// Handler serves parse requests with one shared parser
type Handler struct {
	parser *pcfg.Parser
	logger *zap.Logger
}

// New builds the gin engine serving parser
func New(parser *pcfg.Parser, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, parser, logger)
	return router
}

// SetupRoutes registers the API routes on router
func SetupRoutes(router *gin.Engine, parser *pcfg.Parser, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{parser: parser, logger: logger}

	router.Use(RequestIDMiddleware(), h.accessLog())
	router.GET("/health", h.Health)
	router.POST("/parse", h.Parse)
}

// RequestIDMiddleware reuses the X-Request-ID header of the client or assigns
// a new uuid, and echoes it in the response
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()
		h.logger.Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(begin)))
	}
}

// Health reports the server is up along with the grammar size
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"algorithm":    h.parser.Algorithm(),
		"nonterminals": len(h.parser.Grammar().Nonterminals()),
	})
}

// Parse returns the most probable tree of the sentence in the request
func (h *Handler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Sentence) == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "sentence cannot be empty")
		return
	}
	if len(req.Sentence) > maxSentenceLength {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "sentence is too long")
		return
	}

	algorithm := h.parser.Algorithm()
	if req.Algorithm != "" {
		a, err := pcfg.ParseAlgorithm(req.Algorithm)
		if err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
			return
		}
		algorithm = a
	}

	tree, err := h.parser.ParseWith(algorithm, req.Sentence)
	if err != nil {
		h.sendParseError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParseResponse{
		Tree:        tree,
		Probability: tree.Probability,
		Algorithm:   string(algorithm),
	})
}

func (h *Handler) sendParseError(c *gin.Context, err error) {
	if !errors.Is(err, pcfg.ErrParseFailure) {
		h.logger.Error("parse", zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, err.Error())
		return
	}

	apiErr := &APIError{Code: ErrorCodeParseFailure, Message: err.Error()}
	var parseErr *pcfg.ParseError
	if errors.As(err, &parseErr) && parseErr.Position >= 0 {
		apiErr.Position = &parseErr.Position
	}
	sendError(c, http.StatusUnprocessableEntity, apiErr)
}
