// Package server provides the single-page web UI for tutor sessions.
package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/llm"
	"github.com/papercomputeco/tutor/pkg/session"
)

// SessionCookie carries the browser's session id.
const SessionCookie = "tutor_session"

//go:embed web/index.html
var indexHTML []byte

// Server serves the chat UI and its JSON API. Each browser gets its own
// session through a cookie; sessions never share state.
type Server struct {
	config   Config
	sessions *session.Manager
	logger   *zap.Logger
	validate *validator.Validate
	server   *fiber.App
}

// SubmitRequest is the body of POST /api/messages.
type SubmitRequest struct {
	Content string `json:"content" validate:"required"`
}

// SubmitResponse is returned after a successful exchange.
type SubmitResponse struct {
	Reply   string           `json:"reply"`
	Session session.Snapshot `json:"session"`
}

// New creates a new Server.
func New(config Config, sessions *session.Manager, logger *zap.Logger) (*Server, error) {
	if config.APIKeyEnv == "" {
		config.APIKeyEnv = "CEREBRAS_API_KEY"
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		sessions: sessions,
		logger:   logger,
		validate: validator.New(),
		server:   app,
	}

	app.Use(recover.New())
	app.Use(s.logRequests)

	s.registerRoutes(app)

	return s, nil
}

func (s *Server) registerRoutes(app *fiber.App) {
	app.Get("/", s.handleIndex)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/session", s.handleGetSession)
	api.Post("/messages", s.handleSubmit)
	api.Post("/reset", s.handleReset)
}

// Run starts the server on the configured listening address
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.config.ListenAddr, err)
	}
	return s.RunWithListener(listener)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting web server", zap.String("listen", listener.Addr().String()))
	return s.server.Listener(listener)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	startTime := time.Now()
	err := c.Next()

	s.logger.Debug("handled request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(startTime)),
	)

	return err
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// currentSession returns the caller's session, starting one and issuing the
// cookie when the caller has none or it expired.
func (s *Server) currentSession(c *fiber.Ctx) *session.Session {
	sess, created := s.sessions.GetOrCreate(c.Cookies(SessionCookie))
	if created {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sess
}

// handleGetSession returns the conversation and learning state for redraws.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	return c.JSON(s.currentSession(c).Snapshot())
}

// handleSubmit runs one exchange with the model. A failed completion leaves
// the user's message in the history and answers 502 with a hint about the
// API key.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "content is required"})
	}

	sess := s.currentSession(c)

	reply, err := sess.Submit(c.UserContext(), req.Content)
	if err != nil {
		var completionErr *completion.CompletionError
		if errors.As(err, &completionErr) {
			return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{
				Error: "An error occurred: " + err.Error(),
				Hint:  "Please make sure your " + s.config.APIKeyEnv + " is set in the environment variables.",
			})
		}

		s.logger.Error("unexpected submit failure", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(SubmitResponse{
		Reply:   reply,
		Session: sess.Snapshot(),
	})
}

// handleReset clears the caller's conversation and learning state.
func (s *Server) handleReset(c *fiber.Ctx) error {
	sess := s.currentSession(c)
	sess.Reset()
	return c.JSON(sess.Snapshot())
}
