// Package registry wires the tool packages into the MCP server, applying the
// tier, service and read-only filters from configuration.
package registry

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/drive-image-mcp-go/internal/auth"
	"github.com/evert/drive-image-mcp-go/internal/config"
	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
	"github.com/evert/drive-image-mcp-go/internal/services"
	authtools "github.com/evert/drive-image-mcp-go/internal/tools/auth"
	"github.com/evert/drive-image-mcp-go/internal/tools/drive"
)

// toolNameRE enforces SEP-986: tool names must match ^[a-zA-Z0-9_-]{1,64}$
var toolNameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateToolName checks that a tool name complies with SEP-986.
func ValidateToolName(name string) error {
	if !toolNameRE.MatchString(name) {
		return fmt.Errorf("tool name %q does not match SEP-986 pattern ^[a-zA-Z0-9_-]{1,64}$", name)
	}
	return nil
}

// RegisterAll registers every tool that passes ShouldIncludeTool and returns
// the names registered, in registration order.
func RegisterAll(server *mcp.Server, factory *services.Factory, cfg *config.Config, tierMap map[string]config.ToolInfo, oauthMgr *auth.OAuthManager) []string {
	slog.Info("registering tools",
		"tier", cfg.ToolTier,
		"services", cfg.EnabledServices,
		"readOnly", cfg.ReadOnly,
	)

	var registered []string
	include := func(name string, annotations *mcp.ToolAnnotations) bool {
		if err := ValidateToolName(name); err != nil {
			slog.Error("skipping tool", "tool", name, "error", err)
			return false
		}
		if !ShouldIncludeTool(name, cfg, tierMap, annotations) {
			return false
		}
		registered = append(registered, name)
		return true
	}

	drive.Register(server, factory, drive.Options{
		Resolver:         drivelink.New(cfg.Images.MinFileIDLength, slog.Default()),
		CatalogPath:      cfg.Images.CatalogPath,
		AuditConcurrency: cfg.Images.AuditConcurrency,
		DriveQPS:         cfg.Images.DriveQPS,
		DriveAPI:         cfg.ServiceEnabled(config.ServiceDrive) && cfg.OAuth.ClientID != "" && cfg.OAuth.ClientSecret != "",
	}, include)

	// start_google_auth is only useful when the Drive API tools are on.
	const authTool = "start_google_auth"
	if cfg.ServiceEnabled(config.ServiceDrive) && include(authTool, &mcp.ToolAnnotations{}) {
		authtools.Register(server, oauthMgr)
	}

	slog.Info("registered tools", "count", len(registered), "tools", registered)
	return registered
}

// ShouldIncludeTool checks whether a tool should be registered based on the current config.
// An empty tierMap (tier file missing) disables tier and service filtering.
func ShouldIncludeTool(toolName string, cfg *config.Config, tierMap map[string]config.ToolInfo, annotations *mcp.ToolAnnotations) bool {
	// Filter out legacy auth tool when OAuth 2.1 is enabled
	if cfg.EnableOAuth21 && toolName == "start_google_auth" {
		return false
	}

	// Filter by read-only mode: exclude tools that are not read-only.
	// The auth tool writes only the caller's own token and stays available.
	if cfg.ReadOnly && toolName != "start_google_auth" && annotations != nil && !annotations.ReadOnlyHint {
		return false
	}

	if len(tierMap) == 0 {
		return true
	}

	info, ok := tierMap[toolName]
	if !ok {
		slog.Warn("tool not found in tier config, skipping", "tool", toolName)
		return false
	}

	if config.TierLevel(info.Tier) > config.TierLevel(cfg.ToolTier) {
		return false
	}

	// The auth tool follows the drive service rather than a service of its own.
	service := info.Service
	if service == "auth" {
		service = config.ServiceDrive
	}
	if len(cfg.EnabledServices) > 0 && !slices.Contains(cfg.EnabledServices, service) {
		return false
	}

	return true
}
