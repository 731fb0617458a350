package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/vanshika/wealthnet/internal/layout"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Graph    GraphConfig    `koanf:"graph"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Logging  LoggingConfig  `koanf:"logging"`
	Layout   LayoutConfig   `koanf:"layout"`
	Paths    PathsConfig    `koanf:"paths"`
	Explorer ExplorerConfig `koanf:"explorer"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	MetricsEnabled    bool          `koanf:"metrics_enabled"`
	AllowedOriginsCSV string        `koanf:"allowed_origins"`
	AllowCredentials  bool          `koanf:"allow_credentials"`
}

// AllowedOrigins splits the CSV origin list.
func (h HTTPConfig) AllowedOrigins() []string {
	var origins []string
	for _, part := range strings.Split(h.AllowedOriginsCSV, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Graph backends.
const (
	BackendMemory = "memory"
	BackendNeo4j  = "neo4j"
)

// GraphConfig selects and configures the network store.
type GraphConfig struct {
	Backend        string `koanf:"backend"`
	URI            string `koanf:"uri"`
	Database       string `koanf:"database"`
	Username       string `koanf:"username"`
	Password       string `koanf:"password"`
	MaxConnections int    `koanf:"max_connections"`
	// TraversalDepth bounds how far from the owner a network fetch reaches.
	TraversalDepth int `koanf:"traversal_depth"`
	// Seed and DatasetPath feed the memory backend.
	Seed        int64  `koanf:"seed"`
	DatasetPath string `koanf:"dataset_path"`
}

// BreakerConfig tunes the circuit breaker in front of the graph database.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	FailureRatio float64       `koanf:"failure_ratio"`
	MinRequests  uint32        `koanf:"min_requests"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `koanf:"level"`
	Format        string `koanf:"format"` // text|json
	IncludeCaller bool   `koanf:"include_caller"`
	File          string `koanf:"file"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	Algorithm  string  `koanf:"algorithm"`
	Iterations int     `koanf:"iterations"`
	Width      float64 `koanf:"width"`
	Height     float64 `koanf:"height"`
	Margin     float64 `koanf:"margin"`
}

// PathsConfig tunes introduction-path search.
type PathsConfig struct {
	MaxHops       int           `koanf:"max_hops"`
	Alternatives  int           `koanf:"alternatives"`
	MaxCandidates int           `koanf:"max_candidates"`
	Timeout       time.Duration `koanf:"timeout"`
}

// ExplorerConfig configures the terminal explorer.
type ExplorerConfig struct {
	OwnerID   string `koanf:"owner_id"`
	ServerURL string `koanf:"server_url"`
}

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore, e.g. WEALTHNET_HTTP__PORT.
const EnvPrefix = "WEALTHNET_"

// DefaultFile is loaded from the working directory when no path is given.
const DefaultFile = "wealthnet.yaml"

func defaults() map[string]any {
	return map[string]any{
		"http.host":              "0.0.0.0",
		"http.port":              8080,
		"http.read_timeout":      "10s",
		"http.write_timeout":     "15s",
		"http.idle_timeout":      "60s",
		"http.shutdown_timeout":  "10s",
		"http.metrics_enabled":   true,
		"http.allowed_origins":   "",
		"http.allow_credentials": false,

		"graph.backend":         BackendMemory,
		"graph.max_connections": 10,
		"graph.traversal_depth": 4,
		"graph.seed":            42,

		"breaker.max_requests":  3,
		"breaker.interval":      "60s",
		"breaker.timeout":       "30s",
		"breaker.failure_ratio": 0.6,
		"breaker.min_requests":  5,

		"logging.level":  "info",
		"logging.format": "text",

		"layout.algorithm":  string(layout.ForceDirected),
		"layout.iterations": layout.DefaultIterations,
		"layout.width":      1200.0,
		"layout.height":     800.0,
		"layout.margin":     layout.DefaultMargin,

		"paths.max_hops":       3,
		"paths.alternatives":   3,
		"paths.max_candidates": 5000,
		"paths.timeout":        "10s",

		"explorer.owner_id": "rm-1",
	}
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"host":         "http.host",
	"port":         "http.port",
	"metrics":      "http.metrics_enabled",
	"origins":      "http.allowed_origins",
	"backend":      "graph.backend",
	"graph-uri":    "graph.uri",
	"graph-db":     "graph.database",
	"graph-user":   "graph.username",
	"graph-pass":   "graph.password",
	"seed":         "graph.seed",
	"dataset":      "graph.dataset_path",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"log-file":     "logging.file",
	"algorithm":    "layout.algorithm",
	"iterations":   "layout.iterations",
	"max-hops":     "paths.max_hops",
	"owner":        "explorer.owner_id",
	"server":       "explorer.server_url",
	"path-timeout": "paths.timeout",
}

// Load reads configuration with precedence flags > env > file > defaults.
// An empty path falls back to DefaultFile when it exists.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d is out of range", c.HTTP.Port))
	}
	switch c.Graph.Backend {
	case BackendMemory:
	case BackendNeo4j:
		if c.Graph.URI == "" {
			errs = append(errs, errors.New("graph.uri is required for the neo4j backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("graph.backend %q must be %s or %s", c.Graph.Backend, BackendMemory, BackendNeo4j))
	}
	if c.Graph.TraversalDepth < 1 {
		errs = append(errs, fmt.Errorf("graph.traversal_depth must be positive, got %d", c.Graph.TraversalDepth))
	}
	if _, err := layout.ParseAlgorithm(c.Layout.Algorithm); err != nil {
		errs = append(errs, err)
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		errs = append(errs, fmt.Errorf("layout canvas %vx%v must be positive", c.Layout.Width, c.Layout.Height))
	}
	if c.Paths.MaxHops < 1 || c.Paths.MaxHops > 6 {
		errs = append(errs, fmt.Errorf("paths.max_hops %d must be between 1 and 6", c.Paths.MaxHops))
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		errs = append(errs, fmt.Errorf("breaker.failure_ratio %v must be in (0, 1]", c.Breaker.FailureRatio))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP listen address.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}
