// Package httpapi is the thin fiber-based demonstration consumer described
// in SPEC_FULL.md: it accepts from/to, invokes the engine, and streams the
// resulting event sequence back as newline-delimited JSON. It re-implements
// no engine logic, only (de)serialization and streaming, in the teacher's
// idiom (fiber + cors + logger + swagger).
package httpapi

import (
	"bufio"
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"

	_ "wikihumanpath/docs" // swagger docs
	"wikihumanpath/internal/engine"
)

// searcher is the subset of *engine.Engine this package needs; named so
// tests can substitute a fixture instead of wiring a real engine.
type searcher interface {
	FindPath(ctx context.Context, start, end string) (searchID string, events <-chan engine.Event)
}

// searchIDHeader carries the per-search correlation ID back to the client,
// the same ID that tags every structured log line for this search (§3).
const searchIDHeader = "X-Search-Id"

// SearchRequest is the POST /api/v1/search body and the GET query shape.
type SearchRequest struct {
	From string `json:"from" query:"from" example:"Kevin Bacon"`
	To   string `json:"to" query:"to" example:"Albert Einstein"`
}

// ErrorResponse is returned for malformed requests; engine-level failures
// are reported as a normal "error" event instead, since the engine always
// produces exactly one terminal event.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Server wraps a fiber app around one engine.Engine.
type Server struct {
	app *fiber.App
	eng searcher
	log zerolog.Logger
}

// New builds a Server. eng is the only collaborator; caches and
// classifiers are the engine's problem, not this package's.
func New(eng searcher, logger zerolog.Logger) *Server {
	s := &Server{
		eng: eng,
		log: logger.With().Str("component", "httpapi").Logger(),
	}

	app := fiber.New(fiber.Config{
		AppName: "wikihumanpath API",
	})
	app.Use(fiberlog.New())
	app.Use(cors.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Get("/health", s.health)
	api.Get("/search", s.searchGet)
	api.Post("/search", s.searchPost)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html")
	})

	s.app = app
	return s
}

// Listen starts the HTTP gateway on addr, blocking until it exits.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// health godoc
// @Summary Report service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "wikihumanpath",
	})
}

// searchGet godoc
// @Summary Find a human path between two Wikipedia articles (GET)
// @Tags search
// @Produce application/x-ndjson
// @Param from query string true "Start article"
// @Param to query string true "Target article"
// @Success 200 {object} engine.Event
// @Failure 400 {object} ErrorResponse
// @Router /search [get]
func (s *Server) searchGet(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid query parameters", Code: "INVALID_REQUEST"})
	}
	return s.stream(c, req)
}

// searchPost godoc
// @Summary Find a human path between two Wikipedia articles
// @Description Streams the engine's event sequence as newline-delimited JSON.
// @Tags search
// @Accept json
// @Produce application/x-ndjson
// @Param request body SearchRequest true "Search parameters"
// @Success 200 {object} engine.Event
// @Failure 400 {object} ErrorResponse
// @Router /search [post]
func (s *Server) searchPost(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed request body", Code: "INVALID_REQUEST"})
	}
	return s.stream(c, req)
}

func (s *Server) stream(c *fiber.Ctx, req SearchRequest) error {
	if req.From == "" || req.To == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "both 'from' and 'to' are required", Code: "MISSING_PARAMS"})
	}

	ctx := c.Context()
	searchID, events := s.eng.FindPath(ctx, req.From, req.To)

	c.Set(searchIDHeader, searchID)
	c.Set(fiber.HeaderContentType, "application/x-ndjson")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		enc := json.NewEncoder(w)
		for ev := range events {
			if err := enc.Encode(ev); err != nil {
				s.log.Warn().Err(err).Msg("failed to encode event to stream")
				return
			}
			if err := w.Flush(); err != nil {
				s.log.Warn().Err(err).Msg("client disconnected mid-stream")
				return
			}
		}
	})

	return nil
}
