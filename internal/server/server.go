package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"study-rag/internal/config"
	"study-rag/internal/models"
)

// Service is the orchestrator surface the handlers need.
type Service interface {
	Ingest(ctx context.Context, raw []byte, fileName string) (*models.IngestResult, error)
	Answer(ctx context.Context, req models.QueryRequest) (string, error)
}

type Server struct {
	echo *echo.Echo
	svc  Service
	addr string
}

func New(cfg *config.ServerConfig, svc Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(requestLogger())

	s := &Server{echo: e, svc: svc, addr: cfg.Addr}
	e.POST("/api/ingest", s.handleIngest)
	e.POST("/api/query", s.handleQuery)
	return s
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("starting server")
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleIngest(c echo.Context) error {
	var req models.IngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.IngestResponse{Success: false, Error: "invalid json: " + err.Error()})
	}
	if req.PDF == "" {
		return c.JSON(http.StatusBadRequest, models.IngestResponse{Success: false, Error: "pdf is required"})
	}
	if strings.TrimSpace(req.FileName) == "" {
		return c.JSON(http.StatusBadRequest, models.IngestResponse{Success: false, Error: "fileName is required"})
	}

	raw, err := base64.StdEncoding.DecodeString(req.PDF)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.IngestResponse{Success: false, Error: "pdf is not valid base64: " + err.Error()})
	}

	result, err := s.svc.Ingest(c.Request().Context(), raw, req.FileName)
	if err != nil {
		log.Error().Err(err).Str("file", req.FileName).Msg("ingest failed")
		return c.JSON(http.StatusUnprocessableEntity, models.IngestResponse{Success: false, Error: err.Error()})
	}

	return c.JSON(http.StatusOK, models.IngestResponse{
		Success:         true,
		Message:         "document ingested",
		VectorStorePath: result.VectorStorePath,
		ChunkCount:      result.ChunkCount,
	})
}

func (s *Server) handleQuery(c echo.Context) error {
	var req models.QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.QueryResponse{Success: false, Error: "invalid json: " + err.Error()})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, models.QueryResponse{Success: false, Error: "question is required"})
	}
	if req.VectorStorePath == "" {
		return c.JSON(http.StatusBadRequest, models.QueryResponse{Success: false, Error: "vectorStorePath is required"})
	}
	if req.Kind != "" && req.Kind != models.KindQuestion && req.Kind != models.KindStudyGuide {
		return c.JSON(http.StatusBadRequest, models.QueryResponse{Success: false, Error: "kind must be question or study-guide"})
	}

	answer, err := s.svc.Answer(c.Request().Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("query failed")
		return c.JSON(queryErrorStatus(err), models.QueryResponse{Success: false, Error: err.Error()})
	}

	return c.JSON(http.StatusOK, models.QueryResponse{Success: true, Answer: answer})
}

func queryErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrModelMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// jsonErrorHandler keeps errors echo raises itself (wrong method, oversized
// body, unknown route) in the same {success:false, error} shape as handler
// failures.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if err := c.JSON(code, models.QueryResponse{Success: false, Error: msg}); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			log.Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("took", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
