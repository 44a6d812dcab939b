// Package mcpserver exposes the task catalog and the validator as MCP tools,
// so an agent host can fetch goals and score page states while it runs.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

const (
	ServerName = "acidwave-bench"

	// Path is where the streamable HTTP handler is mounted
	Path = "/mcp"

	shutdownTimeout = 5 * time.Second
)

type tools struct {
	provider  task.Provider
	validator *validate.Validator
	logger    *zap.Logger
}

type options struct {
	version string
	logger  *zap.Logger
}

type Option func(*options)

func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an MCP server serving the tasks of provider. A nil validator is
// replaced by one logging to the server logger.
func New(provider task.Provider, validator *validate.Validator, opts ...Option) (*mcp.Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("task provider cannot be nil")
	}

	o := &options{version: "dev", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	if validator == nil {
		validator = validate.New(validate.WithLogger(o.logger))
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: o.version,
	}, &mcp.ServerOptions{
		Instructions: "Use list_tasks and get_task to pick a goal, then call validate_snapshot with the current page state after each action.",
		HasTools:     true,
	})

	t := &tools{provider: provider, validator: validator, logger: o.logger}
	t.register(s)

	return s, nil
}

// ServeStdio serves s over stdin/stdout until the client disconnects or ctx
// is cancelled
func ServeStdio(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for s
func Handler(s *mcp.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s
	}, &mcp.StreamableHTTPOptions{}))

	return mux
}

// ServeHTTP is a blocking call until ctx is cancelled. ready, when set, is
// called with the endpoint URL once the listener accepts connections.
func ServeHTTP(ctx context.Context, s *mcp.Server, addr string, ready func(url string)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start listen: %w", err)
	}

	if ready != nil {
		ready(fmt.Sprintf("http://%s%s", listener.Addr().String(), Path))
	}

	httpServer := &http.Server{
		Handler: Handler(s),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		return err
	}
}
