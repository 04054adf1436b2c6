// Package drive implements the Drive image MCP tools: link resolution and
// validation, catalog image audits, and Drive-API-backed access checks.
package drive

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
	"github.com/evert/drive-image-mcp-go/internal/pkg/ptr"
	"github.com/evert/drive-image-mcp-go/internal/services"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://www.gstatic.com/images/branding/product/1x/drive_2020q4_48dp.png",
	MIMEType: "image/png",
	Sizes:    []string{"48x48"},
}}

// Options carries the settings the tools need beyond the service factory.
type Options struct {
	Resolver         *drivelink.Resolver
	CatalogPath      string
	AuditConcurrency int
	DriveQPS         float64
	// DriveAPI is set when the drive service is enabled and an OAuth client
	// is configured. audit_catalog_images refuses check_access without it.
	DriveAPI bool
}

// IncludeFunc decides whether a tool is registered. A nil IncludeFunc registers everything.
type IncludeFunc func(name string, annotations *mcp.ToolAnnotations) bool

// Register registers the Drive image tools with the MCP server.
func Register(server *mcp.Server, factory *services.Factory, opts Options, include IncludeFunc) {
	if opts.Resolver == nil {
		opts.Resolver = &drivelink.Resolver{}
	}
	add := func(tool *mcp.Tool) bool {
		tool.Icons = serviceIcons
		return include == nil || include(tool.Name, tool.Annotations)
	}

	// --- Local tools: no Google credentials needed ---

	if t := (&mcp.Tool{
		Name:        "resolve_drive_image_url",
		Description: "Convert a Google Drive share link (file, open-by-id or folder link) into a direct image URL. Returns the best URL plus the ordered fallback candidates. Non-Drive and already-converted URLs are returned unchanged.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Resolve Drive Image URL",
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(false),
		},
	}); add(t) {
		mcp.AddTool(server, t, createResolveHandler(opts.Resolver))
	}

	if t := (&mcp.Tool{
		Name:        "validate_drive_image_url",
		Description: "Check whether a link is usable as a Drive image source. Reports the extracted file ID and converted URL, or why the link is invalid.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Validate Drive Image URL",
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(false),
		},
	}); add(t) {
		mcp.AddTool(server, t, createValidateHandler(opts.Resolver))
	}

	if t := (&mcp.Tool{
		Name:        "list_catalog_options",
		Description: "List the brand, category, stock and feature options used by product records.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Catalog Options",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(false),
		},
	}); add(t) {
		mcp.AddTool(server, t, createListOptionsHandler(opts))
	}

	if t := (&mcp.Tool{
		Name:        "search_catalog_products",
		Description: "Filter and sort catalog products by brand, category, stock, feature or text. Each result includes the resolved image URL the site renders.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search Catalog Products",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(false),
		},
	}); add(t) {
		mcp.AddTool(server, t, createSearchProductsHandler(opts))
	}

	if t := (&mcp.Tool{
		Name:        "audit_catalog_images",
		Description: "Validate every product image link in the catalog. With check_access, also confirms through the Drive API that each file is an image readable by anyone with the link.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Audit Catalog Images",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}); add(t) {
		mcp.AddTool(server, t, createAuditHandler(factory, opts))
	}

	if t := (&mcp.Tool{
		Name:        "normalize_catalog_images",
		Description: "Rewrite every product image link to its direct image URL. Previews the changes unless write is true.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Normalize Catalog Images",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(false),
		},
	}); add(t) {
		mcp.AddTool(server, t, createNormalizeHandler(opts))
	}

	// --- Drive API tools ---

	if t := (&mcp.Tool{
		Name:        "check_drive_image_access",
		Description: "Look up the Drive file behind a link or file ID and report whether it is an image that anyone with the link can view.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Check Drive Image Access",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}); add(t) {
		mcp.AddTool(server, t, createCheckAccessHandler(factory))
	}

	if t := (&mcp.Tool{
		Name:        "list_drive_folder_images",
		Description: "List the image files in a Drive folder (link or ID) with their direct image URLs, ready to paste into additionalImages.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Drive Folder Images",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}); add(t) {
		mcp.AddTool(server, t, createListFolderImagesHandler(factory))
	}
}
