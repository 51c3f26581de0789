package cmd

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mdfranz/openobserve-oss-mcp/internal/server"
	"github.com/mdfranz/openobserve-oss-mcp/internal/tools/openobserve"
)

// simpleLogger provides basic logging for the server
type simpleLogger struct {
	debug bool
}

func (l *simpleLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		log.Printf("[DEBUG] %s %v", msg, args)
	}
}

func (l *simpleLogger) Info(msg string, args ...interface{}) {
	log.Printf("[INFO] %s %v", msg, args)
}

func (l *simpleLogger) Warn(msg string, args ...interface{}) {
	log.Printf("[WARN] %s %v", msg, args)
}

func (l *simpleLogger) Error(msg string, args ...interface{}) {
	log.Printf("[ERROR] %s %v", msg, args)
}

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		debugMode bool

		// Transport options
		transport       string
		httpAddr        string
		sseEndpoint     string
		messageEndpoint string
		httpEndpoint    string

		// Network transport auth
		authToken    string
		authDisabled bool

		// OpenObserve connection options
		baseURL        string
		org            string
		email          string
		password       string
		accessKey      string
		timeoutSeconds int
		maxRows        int
		maxChars       int
	)

	envCfg := server.ConfigFromEnv()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP OpenObserve server",
		Long: `Start the MCP OpenObserve server to provide read-only tools for
querying OpenObserve via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Network transports (sse, streamable-http) require a bearer token via
--auth-token or OPENOBSERVE_MCP_AUTH_TOKEN unless --auth-disabled is set
(local development only).

Environment Variables:
  ZO_BASE_URL            - OpenObserve base URL (default http://127.0.0.1:5080)
  ZO_ORG                 - Organization name (default "default")
  ZO_ACCESS_KEY          - Access key (takes priority over email/password)
  ZO_ROOT_USER_EMAIL     - Basic auth email
  ZO_ROOT_USER_PASSWORD  - Basic auth password
  ZO_TIMEOUT             - Request timeout in seconds (default 30)
  MCP_MAX_ROWS           - Search row cap (default 1000, <= 0 disables)
  MCP_MAX_CHARS          - Response character budget (default 50000, <= 0 disables)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("password") || cmd.Flags().Changed("access-key") {
				fmt.Fprintln(os.Stderr, "WARNING: credentials passed via CLI flags are visible in process listings; prefer environment variables")
			}

			config := server.OpenObserveConfig{
				BaseURL:   baseURL,
				Org:       org,
				Email:     email,
				Password:  password,
				AccessKey: accessKey,
				Timeout:   time.Duration(timeoutSeconds) * time.Second,
				MaxRows:   maxRows,
				MaxChars:  maxChars,
			}

			return runServe(config, transport, debugMode, authToken, authDisabled,
				httpAddr, sseEndpoint, messageEndpoint, httpEndpoint)
		},
	}

	// Add flags for configuring the server
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging (default: false)")

	// Transport flags
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8001", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&messageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	cmd.Flags().StringVar(&authToken, "auth-token", os.Getenv("OPENOBSERVE_MCP_AUTH_TOKEN"), "Bearer token required by network transports")
	cmd.Flags().BoolVar(&authDisabled, "auth-disabled", false, "Disable network transport authentication (local/dev only)")

	// OpenObserve connection flags (env-derived defaults)
	cmd.Flags().StringVar(&baseURL, "base-url", envCfg.BaseURL, "OpenObserve base URL")
	cmd.Flags().StringVar(&org, "org", envCfg.Org, "OpenObserve organization")
	cmd.Flags().StringVar(&email, "email", envCfg.Email, "Basic auth email")
	cmd.Flags().StringVar(&password, "password", envCfg.Password, "Basic auth password")
	cmd.Flags().StringVar(&accessKey, "access-key", envCfg.AccessKey, "OpenObserve access key")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", int(envCfg.Timeout/time.Second), "Request timeout in seconds")
	cmd.Flags().IntVar(&maxRows, "max-rows", envCfg.MaxRows, "Maximum rows returned by search tools (<= 0 disables the cap)")
	cmd.Flags().IntVar(&maxChars, "max-chars", envCfg.MaxChars, "Response character budget (<= 0 disables truncation)")

	return cmd
}

// runServe contains the main server logic with support for multiple transports
func runServe(config server.OpenObserveConfig, transport string, debugMode bool,
	authToken string, authDisabled bool,
	httpAddr, sseEndpoint, messageEndpoint, httpEndpoint string) error {

	switch transport {
	case "stdio", "sse", "streamable-http":
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", transport)
	}

	if transport != "stdio" {
		if authDisabled {
			fmt.Fprintln(os.Stderr, "WARNING: network transport authentication is DISABLED; use only for local development")
		} else if authToken == "" {
			return fmt.Errorf("network transports require authentication: set OPENOBSERVE_MCP_AUTH_TOKEN or pass --auth-disabled (local/dev only)")
		}
	}

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithDebugMode(debugMode),
		server.WithLogger(&simpleLogger{debug: debugMode}),
		server.WithOpenObserveConfig(config),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	// Log configuration
	fmt.Printf("OpenObserve configuration:\n")
	fmt.Printf("  Base URL: %s\n", config.BaseURL)
	fmt.Printf("  Organization: %s\n", config.Org)
	if config.AccessKey != "" {
		fmt.Printf("  Authentication: Access key\n")
	} else if config.Email != "" && config.Password != "" {
		fmt.Printf("  Authentication: Basic auth (email: %s)\n", config.Email)
	} else {
		fmt.Printf("  Authentication: None\n")
	}
	fmt.Printf("  Limits: max_rows=%d max_chars=%d timeout=%s\n",
		config.MaxRows, config.MaxChars, config.Timeout)

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("mcp-openobserve", rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithInstructions(
			"Query OpenObserve using SQL via the `search_sql` tool. "+
				"Use `list_streams` to discover available streams. "+
				"All tools are read-only."),
	)

	// Register OpenObserve tools and prompts
	if err := openobserve.RegisterOpenObserveTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register OpenObserve tools: %w", err)
	}
	openobserve.RegisterOpenObservePrompts(mcpSrv)

	fmt.Printf("Starting MCP OpenObserve server with %s transport...\n", transport)

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "sse":
		sseServer := mcpserver.NewSSEServer(mcpSrv,
			mcpserver.WithSSEEndpoint(sseEndpoint),
			mcpserver.WithMessageEndpoint(messageEndpoint),
		)
		fmt.Printf("SSE server starting on %s\n", httpAddr)
		fmt.Printf("  SSE endpoint: %s\n", sseEndpoint)
		fmt.Printf("  Message endpoint: %s\n", messageEndpoint)
		return runHTTPServer(shutdownCtx, sseServer, httpAddr, authToken)
	default: // streamable-http
		httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(httpEndpoint),
		)
		fmt.Printf("Streamable HTTP server starting on %s\n", httpAddr)
		fmt.Printf("  HTTP endpoint: %s\n", httpEndpoint)
		return runHTTPServer(shutdownCtx, httpServer, httpAddr, authToken)
	}
}

// runStdioServer runs the server with STDIO transport
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	// Start the server in a goroutine so we can handle shutdown signals
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	fmt.Println("Server gracefully stopped")
	return nil
}

// runHTTPServer serves an MCP transport handler over HTTP, optionally gated
// by a static bearer token, until the context is cancelled.
func runHTTPServer(ctx context.Context, handler http.Handler, addr, authToken string) error {
	if authToken != "" {
		handler = requireBearerToken(handler, authToken)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	// Wait for either shutdown signal or server completion
	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// requireBearerToken rejects requests lacking the expected Authorization
// header. The comparison is constant time.
func requireBearerToken(next http.Handler, token string) http.Handler {
	expected := "Bearer " + token
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
