// Package config loads server configuration from environment variables and CLI flags.
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evert/drive-image-mcp-go/internal/catalog"
	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
)

// Services this server can expose. "images" tools need no Google credentials.
const (
	ServiceImages = "images"
	ServiceDrive  = "drive"
)

// Config holds all server configuration loaded from environment variables and CLI flags.
type Config struct {
	OAuth struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Server struct {
		Transport string
		Port      int
		Host      string
		BaseURI   string
	}
	Images struct {
		CatalogPath      string
		MinFileIDLength  int
		AuditConcurrency int
		DriveQPS         float64
		RedirectHosts    []string
	}
	ToolTier        string
	EnabledServices []string
	ReadOnly        bool
	StatelessMode   bool
	EnableOAuth21   bool
	LogLevel        string
	CredentialsDir  string
}

// Load reads configuration from the environment and the process's command line.
// CLI flags take precedence over environment variables.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command-line arguments.
func LoadArgs(args []string) (*Config, error) {
	cfg := &Config{}

	cfg.OAuth.ClientID = os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	cfg.OAuth.ClientSecret = os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")

	cfg.CredentialsDir = os.Getenv("DRIVE_IMAGE_MCP_CREDENTIALS_DIR")
	if cfg.CredentialsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.CredentialsDir = filepath.Join(home, ".drive_image_mcp", "credentials")
	}

	cfg.EnabledServices = splitList(os.Getenv("ENABLED_SERVICES"))

	cfg.Server.Host = envOrDefault("DRIVE_IMAGE_MCP_HOST", "0.0.0.0")
	cfg.Server.BaseURI = envOrDefault("DRIVE_IMAGE_MCP_BASE_URI", "http://localhost")
	cfg.Server.Transport = envOrDefault("MCP_TRANSPORT", "stdio")
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")
	cfg.ToolTier = envOrDefault("TOOL_TIER", "complete")
	cfg.StatelessMode = envBool("DRIVE_IMAGE_MCP_STATELESS_MODE")
	cfg.EnableOAuth21 = envBool("MCP_ENABLE_OAUTH21")
	cfg.ReadOnly = envBool("DRIVE_IMAGE_MCP_READ_ONLY")
	cfg.Images.CatalogPath = os.Getenv("CATALOG_PATH")
	cfg.Images.RedirectHosts = splitList(os.Getenv("IMAGE_REDIRECT_HOSTS"))

	var err error
	if cfg.Server.Port, err = envInt("MCP_PORT", envInt0("PORT", 8000)); err != nil {
		return nil, err
	}
	if cfg.Images.MinFileIDLength, err = envInt("DRIVE_MIN_FILE_ID_LENGTH", drivelink.DefaultMinFileIDLength); err != nil {
		return nil, err
	}
	if cfg.Images.AuditConcurrency, err = envInt("AUDIT_CONCURRENCY", catalog.DefaultAuditConcurrency); err != nil {
		return nil, err
	}
	if cfg.Images.DriveQPS, err = envFloat("DRIVE_API_QPS", 5); err != nil {
		return nil, err
	}

	// CLI flags override env vars
	fs := flag.NewFlagSet("drive-image-mcp", flag.ContinueOnError)
	fs.StringVar(&cfg.Server.Transport, "transport", cfg.Server.Transport, "Transport mode: stdio or streamable-http")
	var toolsFlag string
	fs.StringVar(&toolsFlag, "tools", "", "Services to enable (comma-separated): images,drive")
	fs.StringVar(&cfg.ToolTier, "tool-tier", cfg.ToolTier, "Load tools by tier: core, extended, or complete")
	fs.BoolVar(&cfg.ReadOnly, "read-only", cfg.ReadOnly, "Request only read-only scopes, disable write tools")
	fs.StringVar(&cfg.Images.CatalogPath, "catalog", cfg.Images.CatalogPath, "Path to the product catalog YAML file")
	fs.IntVar(&cfg.Images.MinFileIDLength, "min-file-id-length", cfg.Images.MinFileIDLength, "Shortest Drive file ID accepted by validation")
	var hostsFlag string
	fs.StringVar(&hostsFlag, "image-hosts", "", "Extra hosts /image may redirect to (comma-separated, leading dot matches subdomains)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if hostsFlag != "" {
		cfg.Images.RedirectHosts = splitList(hostsFlag)
	}

	// --tools overrides (not appends to) ENABLED_SERVICES.
	if toolsFlag != "" {
		cfg.EnabledServices = splitList(toolsFlag)
	}

	switch cfg.ToolTier {
	case "core", "extended", "complete":
	default:
		return nil, fmt.Errorf("invalid tool tier %q — use core, extended, or complete", cfg.ToolTier)
	}
	if cfg.Images.MinFileIDLength <= 0 {
		return nil, fmt.Errorf("min file id length must be positive, got %d", cfg.Images.MinFileIDLength)
	}

	// OAuth credentials are only needed when the Drive API tools are on.
	if cfg.ServiceEnabled(ServiceDrive) {
		if cfg.OAuth.ClientID == "" {
			return nil, fmt.Errorf("GOOGLE_OAUTH_CLIENT_ID environment variable is required when the drive service is enabled")
		}
		if cfg.OAuth.ClientSecret == "" {
			return nil, fmt.Errorf("GOOGLE_OAUTH_CLIENT_SECRET environment variable is required when the drive service is enabled")
		}
	}

	// If the base URI already includes a port, use it as-is; otherwise append the server port.
	parsedURI, parseErr := url.Parse(cfg.Server.BaseURI)
	if parseErr == nil && parsedURI.Port() != "" {
		cfg.OAuth.RedirectURL = cfg.Server.BaseURI + "/oauth/callback"
	} else {
		cfg.OAuth.RedirectURL = fmt.Sprintf("%s:%d/oauth/callback", cfg.Server.BaseURI, cfg.Server.Port)
	}

	return cfg, nil
}

// ServiceEnabled reports whether service is enabled (an empty list enables all).
func (c *Config) ServiceEnabled(service string) bool {
	if len(c.EnabledServices) == 0 {
		return true
	}
	for _, s := range c.EnabledServices {
		if s == service {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// envInt0 is envInt that falls back to def on a bad value; used for PORT,
// which hosting platforms set.
func envInt0(key string, def int) int {
	n, err := envInt(key, def)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
