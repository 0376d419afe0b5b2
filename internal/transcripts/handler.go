package transcripts

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"transcript-analyzer/internal/extract"
	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/shared/server/respond"
	"transcript-analyzer/internal/shared/util"
)

const (
	detailConnection = "Failed to connect to analysis service. Please try again."
	detailRateLimit  = "Analysis service temporarily unavailable. Please try again later."
	detailLLM        = "Analysis service error. Please try again."
	detailAnalyze    = "Failed to analyze transcript. Please try again."
	detailBatch      = "Failed to analyze transcripts. Please try again."
)

// Handler wires HTTP handlers to the transcripts service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches transcript routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/analyze", h.analyzePost)
	r.GET("/analyze", h.analyzeGet)
	r.POST("/analyze/file", h.analyzeFile)
	r.POST("/analyze/batch", h.analyzeBatch)
	r.GET("/analysis/:id", h.getAnalysis)
}

func (h *Handler) analyzePost(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", validationDetail(err))
		return
	}
	h.analyzeOne(c, req.Transcript)
}

func (h *Handler) analyzeGet(c *gin.Context) {
	var q AnalyzeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", validationDetail(err))
		return
	}
	h.analyzeOne(c, q.Transcript)
}

func (h *Handler) analyzeFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds maximum size of 10 MiB")
		return
	}
	name, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "invalid file name")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "unable to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil || len(data) > maxUploadBytes {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "unable to read file")
		return
	}

	text, err := extract.TextFromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), name)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_file", "Only .txt, .pdf and .docx files are supported")
			return
		}
		respond.Error(c, http.StatusUnprocessableEntity, "extract_failed", "Unable to extract text from file")
		return
	}
	if strings.TrimSpace(text) == "" {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "File contains no text")
		return
	}
	if utf8.RuneCountInString(text) > maxTranscriptChars {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "Transcript exceeds maximum length of 100,000 characters")
		return
	}
	h.analyzeOne(c, text)
}

func (h *Handler) analyzeOne(c *gin.Context, transcript string) {
	analysis, err := h.Svc.Analyze(c.Request.Context(), transcript)
	if err != nil {
		writeAnalysisError(c, err, detailAnalyze)
		return
	}
	c.Set("analysisId", analysis.ID)
	respond.Created(c, toResponse(analysis))
}

func (h *Handler) analyzeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", validationDetail(err))
		return
	}
	for i, transcript := range req.Transcripts {
		if strings.TrimSpace(transcript) == "" {
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", fmt.Sprintf("Transcript at index %d must not be empty", i))
			return
		}
		if utf8.RuneCountInString(transcript) > maxTranscriptChars {
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", fmt.Sprintf("Transcript at index %d exceeds maximum length of 100,000 characters", i))
			return
		}
	}

	analyses, err := h.Svc.AnalyzeBatch(c.Request.Context(), req.Transcripts)
	if err != nil {
		writeAnalysisError(c, err, detailBatch)
		return
	}
	resp := BatchResponse{Results: make([]AnalysisResponse, 0, len(analyses))}
	for _, a := range analyses {
		resp.Results = append(resp.Results, toResponse(a))
	}
	respond.Created(c, resp)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	id := c.Param("id")
	analysis, ok, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch analysis. Please try again.")
		return
	}
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", (&NotFoundError{ID: id}).Error())
		return
	}
	respond.OK(c, toResponse(analysis))
}

// writeAnalysisError maps service errors to status codes.
func writeAnalysisError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, llm.ErrConnection):
		respond.Error(c, http.StatusBadGateway, "llm_connection", detailConnection)
	case errors.Is(err, llm.ErrRateLimit):
		respond.Error(c, http.StatusServiceUnavailable, "llm_rate_limit", detailRateLimit)
	case errors.Is(err, llm.ErrLLM):
		respond.Error(c, http.StatusInternalServerError, "llm_error", detailLLM)
	default:
		respond.Error(c, http.StatusInternalServerError, "analysis_error", fallback)
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must not be empty", field)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
