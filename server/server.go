package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"thought_leadership_workflow/extract"
	"thought_leadership_workflow/job"
	"thought_leadership_workflow/publisher"
)

// MaxUploadBytes caps documents accepted by the upload endpoint.
const MaxUploadBytes = 10 << 20

// Jobs is the job controller surface the HTTP layer needs.
type Jobs interface {
	Submit(spec job.Spec) (*job.Run, error)
	Status() job.Status
}

// Logger is the minimal logging surface used by the server.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type Server struct {
	jobs         Jobs
	outputs      publisher.Store
	defaultPosts int
	logger       Logger
}

func New(jobs Jobs, outputs publisher.Store, defaultPosts int, logger Logger) (*Server, error) {
	if jobs == nil {
		return nil, errors.New("job controller required")
	}
	if outputs == nil {
		return nil, errors.New("output store required")
	}
	if defaultPosts <= 0 {
		defaultPosts = 3
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Server{jobs: jobs, outputs: outputs, defaultPosts: defaultPosts, logger: logger}, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logMiddleware())
	r.MaxMultipartMemory = MaxUploadBytes

	r.GET("/health", s.handleHealth)
	api := r.Group("/api")
	api.POST("/jobs", s.handleSubmit)
	api.GET("/status", s.handleStatus)
	api.GET("/outputs/:stamp", s.handleOutput)
	api.POST("/upload", s.handleUpload)
	return r
}

// --- Handlers ---

type submitReq struct {
	Context      string   `json:"context"`
	NumPosts     *int     `json:"num_posts"`
	LinkedInURLs []string `json:"linkedin_urls"`
	XURLs        []string `json:"x_urls"`
	XSearchTerms []string `json:"x_search_terms"`
	XHandles     []string `json:"x_handles"`
}

type submitResp struct {
	Accepted bool   `json:"accepted"`
	RunID    string `json:"run_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type uploadResp struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": s.jobs.Status().State})
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, submitResp{Reason: "invalid request body: " + err.Error()})
		return
	}
	spec := job.Spec{
		Context:       req.Context,
		NumPosts:      s.defaultPosts,
		LinkedInSeeds: req.LinkedInURLs,
		XSeeds:        req.XURLs,
		XSearchTerms:  req.XSearchTerms,
		XHandles:      req.XHandles,
	}
	if req.NumPosts != nil {
		spec.NumPosts = *req.NumPosts
	}
	run, err := s.jobs.Submit(spec)
	switch {
	case errors.Is(err, job.ErrJobInProgress):
		c.JSON(http.StatusConflict, submitResp{Reason: err.Error()})
	case errors.Is(err, job.ErrInvalidSpec):
		c.JSON(http.StatusBadRequest, submitResp{Reason: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, submitResp{Reason: err.Error()})
	default:
		c.JSON(http.StatusAccepted, submitResp{Accepted: true, RunID: run.ID()})
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.jobs.Status())
}

func (s *Server) handleOutput(c *gin.Context) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(c.Param("stamp"), "output_"), ".txt")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	body, err := s.outputs.Load(ctx, stamp)
	switch {
	case errors.Is(err, publisher.ErrInvalidStamp):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, publisher.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	switch c.Query("format") {
	case "", "text":
		c.Header("Content-Disposition", `attachment; filename="`+publisher.FileName(stamp)+`"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
	case "html":
		html, err := publisher.RenderHTML(body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
	case "pdf":
		doc, err := publisher.RenderPDF(body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		name := strings.TrimSuffix(publisher.FileName(stamp), ".txt") + ".pdf"
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/pdf", doc)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be text, html or pdf"})
	}
}

func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing document: " + err.Error()})
		return
	}
	if fh.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text, err := extract.Text(fh.Filename, data)
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, uploadResp{Text: text, Filename: fh.Filename})
}

// --- Helpers ---

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if path == "" {
			path = "/"
		}
		s.logger.Printf("[http] %s %s %d %s", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
