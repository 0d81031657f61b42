package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TurnResponse is the structured result of the chat tool.
type TurnResponse struct {
	Response     string         `json:"response" jsonschema_description:"Assistant reply in markdown"`
	SessionToken string         `json:"session_token" jsonschema_description:"Token to pass on the next call"`
	State        domain.State   `json:"state" jsonschema_description:"Dialogue state after the turn"`
	Branch       domain.Branch  `json:"branch" jsonschema_description:"Active branch: none, design or evaluate"`
	Context      domain.Summary `json:"context" jsonschema_description:"Collected learning objectives, grade and subject"`
	MessageCount int            `json:"message_count"`
}

// SessionResponse is the structured result of the history and reset tools.
type SessionResponse struct {
	SessionToken string           `json:"session_token"`
	State        domain.State     `json:"state"`
	Branch       domain.Branch    `json:"branch"`
	Context      domain.Summary   `json:"context"`
	Messages     []domain.Message `json:"messages"`
}

// Server exposes a Coach as an MCP server.
type Server struct {
	coach     ports.Coach
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(coach ports.Coach, version string, opts ...Option) *Server {
	s := &Server{
		coach:     coach,
		mcpServer: server.NewMCPServer("udlcoach-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send one message to the UDL assessment coach. Omit session_token to start a new conversation; start with \"design\" or \"evaluate\"."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The educator's message")),
		mcp.WithString("session_token", mcp.Description("Token returned by a previous call")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	resetTool := mcp.NewTool("reset_session",
		mcp.WithDescription("Reset a conversation to its initial state, keeping its token."),
		mcp.WithString("session_token", mcp.Required(), mcp.Description("Session to reset")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(resetTool, mcp.NewStructuredToolHandler(s.handleReset))

	historyTool := mcp.NewTool("session_history",
		mcp.WithDescription("Read the transcript and collected context of a conversation."),
		mcp.WithString("session_token", mcp.Required(), mcp.Description("Session to read")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(historyTool, mcp.NewStructuredToolHandler(s.handleHistory))
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	message, _ := args["message"].(string)
	token, _ := args["session_token"].(string)

	reply, err := s.coach.Send(ctx, token, message)
	if err != nil {
		return TurnResponse{}, s.toolError("chat", err)
	}
	return TurnResponse{
		Response:     reply.Text,
		SessionToken: reply.Token,
		State:        reply.State,
		Branch:       reply.Branch,
		Context:      reply.Context,
		MessageCount: reply.MessageCount,
	}, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	token, _ := args["session_token"].(string)
	rec, err := s.coach.Reset(ctx, token)
	if err != nil {
		return SessionResponse{}, s.toolError("reset_session", err)
	}
	return newSessionResponse(rec), nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	token, _ := args["session_token"].(string)
	rec, err := s.coach.History(ctx, token)
	if err != nil {
		return SessionResponse{}, s.toolError("session_history", err)
	}
	return newSessionResponse(rec), nil
}

// toolError hides internal detail behind the same categories as the HTTP transport.
func (s *Server) toolError(tool string, err error) error {
	switch {
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		s.logger.Error("MCP tool: capability unavailable", "tool", tool, "err", err)
		return errors.New("the assistant is temporarily unavailable; the conversation is unchanged, please retry")
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingToken):
		return err
	default:
		s.logger.Error("MCP tool failed", "tool", tool, "err", err)
		return errors.New("internal error")
	}
}

func newSessionResponse(rec *domain.Record) SessionResponse {
	return SessionResponse{
		SessionToken: rec.Token,
		State:        rec.State,
		Branch:       rec.Branch,
		Context:      rec.Context.Summary(),
		Messages:     rec.Transcript,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("udlcoach://sessions", "Stored conversations",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		tokens, err := s.coach.Sessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(tokens)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "udlcoach://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
