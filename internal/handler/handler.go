package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hpn/hpn-codepilot/internal/adapter"
	"github.com/hpn/hpn-codepilot/internal/analyzer"
	"github.com/hpn/hpn-codepilot/internal/backend"
	"github.com/hpn/hpn-codepilot/internal/domain"
	"github.com/hpn/hpn-codepilot/internal/prompt"
	"github.com/hpn/hpn-codepilot/internal/security"
)

// providerKey stores the backend description for the logging middleware.
const providerKey = "provider"

// Assistant is the part of assistant.Service the handlers use.
type Assistant interface {
	AskQuestion(ctx context.Context, question string) (string, error)
	ValidateConfiguration(ctx context.Context) (bool, error)
	AvailableModels(ctx context.Context) []string
	SupportedProviders() []string
	CurrentProvider() string
	IsLocal() bool
}

// Handler serves the assistant API.
type Handler struct {
	assistant Assistant
	analyzer  *analyzer.Analyzer
	prompts   *prompt.Builder
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	origins   []string
	chat      chatTimings
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithAllowedOrigins restricts which browser origins may open the chat socket.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		h.origins = origins
	}
}

// New creates a Handler.
func New(a Assistant, az *analyzer.Analyzer, prompts *prompt.Builder, opts ...Option) *Handler {
	h := &Handler{
		assistant: a,
		analyzer:  az,
		prompts:   prompts,
		logger:    slog.Default(),
		chat:      defaultChatTimings,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(h.origins),
	}
	return h
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HandleHealth)

	v1 := r.Group("/v1")
	v1.POST("/ask", h.HandleAsk)
	v1.POST("/validate", h.HandleValidate)
	v1.GET("/provider", h.HandleProvider)
	v1.GET("/providers", h.HandleProviders)
	v1.GET("/models", h.HandleModels)
	v1.POST("/analyze", h.HandleAnalyze)
	v1.POST("/assist/:operation", h.HandleAssist)
	v1.GET("/chat", h.HandleChat)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
}

// HandleAsk handles POST /v1/ask.
func (h *Handler) HandleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.sendError(c, http.StatusBadRequest, "invalid_request_error", "question is required")
		return
	}

	provider := h.assistant.CurrentProvider()
	c.Set(providerKey, provider)

	answer, err := h.assistant.AskQuestion(c.Request.Context(), req.Question)
	if err != nil {
		h.sendBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, askResponse{Answer: answer, Provider: provider})
}

// HandleValidate handles POST /v1/validate. A failed probe is reported as
// valid=false with the reason, not as an HTTP error.
func (h *Handler) HandleValidate(c *gin.Context) {
	provider := h.assistant.CurrentProvider()
	c.Set(providerKey, provider)

	valid, err := h.assistant.ValidateConfiguration(c.Request.Context())
	resp := gin.H{"valid": valid && err == nil, "provider": provider}
	if err != nil {
		_, errType := classify(err)
		resp["error"] = gin.H{"message": security.Redact(err.Error()), "type": errType}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleProvider handles GET /v1/provider.
func (h *Handler) HandleProvider(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider": h.assistant.CurrentProvider(),
		"useLocal": h.assistant.IsLocal(),
	})
}

// HandleProviders handles GET /v1/providers: the provider keys of the active
// mode, with setup details for local servers.
func (h *Handler) HandleProviders(c *gin.Context) {
	keys := h.assistant.SupportedProviders()
	if !h.assistant.IsLocal() {
		c.JSON(http.StatusOK, gin.H{"useLocal": false, "providers": keys})
		return
	}

	servers := make([]localServer, 0, len(keys))
	for _, k := range keys {
		servers = append(servers, localServer{
			Key:          k,
			ProviderInfo: adapter.LocalProviderInfo(domain.LocalProviderType(k)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"useLocal": true, "providers": keys, "servers": servers})
}

type localServer struct {
	Key string `json:"key"`
	adapter.ProviderInfo
}

// HandleModels handles GET /v1/models.
func (h *Handler) HandleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.assistant.AvailableModels(c.Request.Context())})
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"provider": h.assistant.CurrentProvider(),
		"useLocal": h.assistant.IsLocal(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	// Document is the whole file; Code is used when it is empty.
	Document string `json:"document"`
	Path     string `json:"path"`
}

type analyzeResponse struct {
	Issues  []domain.CodeIssue `json:"issues"`
	Context domain.CodeContext `json:"context"`
}

// HandleAnalyze handles POST /v1/analyze.
func (h *Handler) HandleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}
	if req.Language == "" {
		h.sendError(c, http.StatusBadRequest, "invalid_request_error", "language is required")
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Issues:  h.analyzer.AnalyzeCode(req.Code, req.Language),
		Context: h.codeContext(req.Code, req.Document, req.Language, req.Path),
	})
}

type assistRequest struct {
	Code           string `json:"code"`
	Language       string `json:"language"`
	Document       string `json:"document"`
	Path           string `json:"path"`
	Description    string `json:"description"`
	RefactorType   string `json:"refactorType"`
	TargetLanguage string `json:"targetLanguage"`
}

type assistResponse struct {
	Answer   string `json:"answer"`
	Code     string `json:"code,omitempty"`
	Provider string `json:"provider"`
}

// HandleAssist handles POST /v1/assist/:operation. For operations that edit
// the buffer, code holds the answer with its markdown fences removed.
func (h *Handler) HandleAssist(c *gin.Context) {
	op, ok := prompt.ParseOperation(c.Param("operation"))
	if !ok {
		h.sendError(c, http.StatusNotFound, "invalid_request_error", "unknown operation: "+c.Param("operation"))
		return
	}

	var req assistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	preq := prompt.Request{
		Operation:      op,
		Code:           req.Code,
		Language:       req.Language,
		Description:    req.Description,
		RefactorType:   req.RefactorType,
		TargetLanguage: req.TargetLanguage,
	}
	if op != prompt.OpGenerate && op != prompt.OpMigrate {
		preq.Context = h.codeContext(req.Code, req.Document, req.Language, req.Path)
	}
	if op == prompt.OpFix {
		preq.Issues = h.analyzer.AnalyzeCode(req.Code, req.Language)
	}

	text, err := h.prompts.Build(preq)
	if err != nil {
		if errors.Is(err, prompt.ErrMissingField) {
			h.sendError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
			return
		}
		h.sendError(c, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	provider := h.assistant.CurrentProvider()
	c.Set(providerKey, provider)

	answer, err := h.assistant.AskQuestion(c.Request.Context(), text)
	if err != nil {
		h.sendBackendError(c, err)
		return
	}

	resp := assistResponse{Answer: answer, Provider: provider}
	if op.AppliesToEditor() {
		resp.Code = prompt.StripFences(answer)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) codeContext(code, document, language, path string) domain.CodeContext {
	if document == "" {
		document = code
	}
	return h.analyzer.CodeContext(analyzer.TextDocument{
		Content:  document,
		Language: language,
		FilePath: path,
	}, domain.Range{})
}

// classify maps a backend error to its HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case backend.IsConfigurationError(err):
		return http.StatusBadRequest, "configuration_error"
	case backend.IsHTTPError(err):
		return http.StatusBadGateway, "provider_error"
	case backend.IsUnreachableError(err):
		return http.StatusGatewayTimeout, "unreachable_error"
	case backend.IsRequestError(err):
		return http.StatusInternalServerError, "request_error"
	case errors.Is(err, context.Canceled):
		return 499, "canceled"
	}
	return http.StatusInternalServerError, "server_error"
}

func (h *Handler) sendBackendError(c *gin.Context, err error) {
	status, errType := classify(err)
	h.logger.Warn("assistant call failed",
		slog.String("request_id", RequestID(c)),
		slog.String("type", errType),
		slog.String("error", err.Error()),
	)
	_ = c.Error(err)
	h.sendError(c, status, errType, err.Error())
}

// sendError writes the {"error":{"message","type"}} body. Messages are
// redacted because provider error text can echo request details.
func (h *Handler) sendError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, errorBody(errType, security.Redact(message)))
}

func errorBody(errType, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"message": message,
			"type":    errType,
		},
	}
}
