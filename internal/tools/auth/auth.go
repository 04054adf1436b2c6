// Package auth implements the start_google_auth MCP tool. Only the Drive API
// tools need it; link resolution and catalog tools work without signing in.
// The tool is filtered out when MCP_ENABLE_OAUTH21 is true.
package auth

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	iauth "github.com/evert/drive-image-mcp-go/internal/auth"
	"github.com/evert/drive-image-mcp-go/internal/pkg/ptr"
	"github.com/evert/drive-image-mcp-go/internal/pkg/response"
	"github.com/evert/drive-image-mcp-go/internal/pkg/validate"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://www.gstatic.com/images/branding/product/1x/googleg_48dp.png",
	MIMEType: "image/png",
	Sizes:    []string{"48x48"},
}}

// Register registers the start_google_auth tool with the MCP server.
func Register(server *mcp.Server, oauthMgr *iauth.OAuthManager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_google_auth",
		Icons:       serviceIcons,
		Description: "Sign in with Google so the Drive image tools (check_drive_image_access, list_drive_folder_images, audit_catalog_images with check_access) can read file metadata and sharing settings. Returns an authorization URL to open in a browser.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Sign in to Google Drive",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createStartAuthHandler(oauthMgr))
}

type StartAuthInput struct {
	UserEmail string `json:"user_google_email" jsonschema:"required" jsonschema_description:"The Google account that owns or can see the product images"`
}

type StartAuthOutput struct {
	AuthURL   string `json:"auth_url"`
	UserEmail string `json:"user_google_email"`
}

func createStartAuthHandler(oauthMgr *iauth.OAuthManager) mcp.ToolHandlerFor[StartAuthInput, StartAuthOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StartAuthInput) (*mcp.CallToolResult, StartAuthOutput, error) {
		if err := validate.Email(input.UserEmail); err != nil {
			return nil, StartAuthOutput{}, err
		}

		authURL := oauthMgr.GetAuthURL(input.UserEmail)

		rb := response.New()
		rb.Header("Google Drive Sign-in")
		rb.Line("Open this URL and grant read access to Drive:")
		rb.Blank()
		rb.Raw(authURL)
		rb.Blank()
		rb.Blank()
		rb.Line("The server captures the authorization code on its /oauth/callback endpoint.")
		rb.KeyValue("Account", input.UserEmail)

		return rb.TextResult(), StartAuthOutput{AuthURL: authURL, UserEmail: input.UserEmail}, nil
	}
}
