package server

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// OpenObserveConfig holds the OpenObserve connection configuration.
// It is built once at startup and read-only afterwards; concurrent tool
// invocations share it without locking.
type OpenObserveConfig struct {
	BaseURL   string
	Org       string
	Email     string
	Password  string
	AccessKey string
	Timeout   time.Duration

	// MaxRows caps the effective `size` of search requests (<= 0 disables
	// the cap). MaxChars is the response truncation budget in characters
	// (<= 0 disables truncation).
	MaxRows  int
	MaxChars int
}

// ServerContext holds the server configuration and shared resources
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.RWMutex

	// Configuration
	debugMode bool
	logger    Logger

	// OpenObserve configuration
	openObserveConfig OpenObserveConfig
}

// ServerOption is a functional option for configuring ServerContext
type ServerOption func(*ServerContext)

// WithDebugMode sets whether debug logging is enabled
func WithDebugMode(enabled bool) ServerOption {
	return func(sc *ServerContext) {
		sc.debugMode = enabled
	}
}

// WithLogger sets the logger for the server context
func WithLogger(logger Logger) ServerOption {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithOpenObserveConfig sets the OpenObserve configuration
func WithOpenObserveConfig(config OpenObserveConfig) ServerOption {
	return func(sc *ServerContext) {
		sc.openObserveConfig = config
	}
}

// NewServerContext creates a new server context with the given options
func NewServerContext(ctx context.Context, opts ...ServerOption) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
	}

	// Apply options
	for _, opt := range opts {
		opt(sc)
	}

	// Set default logger if none provided
	if sc.logger == nil {
		sc.logger = &noopLogger{}
	}

	// Load OpenObserve configuration from environment if not provided
	if sc.openObserveConfig.BaseURL == "" {
		sc.openObserveConfig = ConfigFromEnv()
	}

	return sc, nil
}

// ConfigFromEnv builds an OpenObserveConfig from the ZO_* and MCP_*
// environment variables, applying the documented defaults.
func ConfigFromEnv() OpenObserveConfig {
	return OpenObserveConfig{
		BaseURL:   envOrDefault("ZO_BASE_URL", "http://127.0.0.1:5080"),
		Org:       envOrDefault("ZO_ORG", "default"),
		Email:     os.Getenv("ZO_ROOT_USER_EMAIL"),
		Password:  os.Getenv("ZO_ROOT_USER_PASSWORD"),
		AccessKey: os.Getenv("ZO_ACCESS_KEY"),
		Timeout:   time.Duration(envInt("ZO_TIMEOUT", 30)) * time.Second,
		MaxRows:   envInt("MCP_MAX_ROWS", 1000),
		MaxChars:  envInt("MCP_MAX_CHARS", 50000),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Context returns the context associated with the server
func (sc *ServerContext) Context() context.Context {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.ctx
}

// IsDebugMode returns whether debug logging is enabled
func (sc *ServerContext) IsDebugMode() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.debugMode
}

// Logger returns the configured logger
func (sc *ServerContext) Logger() Logger {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.logger
}

// OpenObserveConfig returns the OpenObserve configuration
func (sc *ServerContext) OpenObserveConfig() OpenObserveConfig {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.openObserveConfig
}

// SetDebugMode dynamically sets whether debug logging is enabled
func (sc *ServerContext) SetDebugMode(enabled bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	sc.debugMode = enabled
}

// Shutdown gracefully shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.cancel != nil {
		sc.cancel()
		sc.cancel = nil
	}

	return nil
}

// noopLogger is a logger that does nothing
type noopLogger struct{}

func (l *noopLogger) Debug(msg string, args ...interface{}) {}
func (l *noopLogger) Info(msg string, args ...interface{})  {}
func (l *noopLogger) Warn(msg string, args ...interface{})  {}
func (l *noopLogger) Error(msg string, args ...interface{}) {}
