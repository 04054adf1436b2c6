package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/drive-image-mcp-go/internal/auth"
	"github.com/evert/drive-image-mcp-go/internal/pkg/validate"
)

// signInMarkers identify tool errors the user fixes by signing in again.
// HandleGoogleAPIError and the token store both name start_google_auth.
var signInMarkers = []string{
	"start_google_auth",
	"no credentials found",
	"authentication expired",
}

// AuthEnhancerMiddleware appends a ready-made sign-in URL to Drive tool errors
// that need the user to authenticate, saving a start_google_auth round-trip.
// Errors are only enhanced when the call carried a well-formed user_google_email.
func AuthEnhancerMiddleware(oauthMgr *auth.OAuthManager) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			result, err := next(ctx, method, req)
			if method != "tools/call" {
				return result, err
			}
			if text := signInText(result); text != nil {
				if email := extractUserEmail(req); email != "" {
					text.Text += fmt.Sprintf("\n\nSign in to Google Drive as %s:\n%s", email, oauthMgr.GetAuthURL(email))
				}
			}
			return result, err
		}
	}
}

// signInText returns the error text of a tool result that asks for sign-in, or nil.
func signInText(result mcp.Result) *mcp.TextContent {
	r, ok := result.(*mcp.CallToolResult)
	if !ok || r == nil || !r.IsError || len(r.Content) == 0 {
		return nil
	}
	text, ok := r.Content[0].(*mcp.TextContent)
	if !ok || !isAuthRelatedError(text.Text) {
		return nil
	}
	return text
}

func isAuthRelatedError(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range signInMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extractUserEmail reads user_google_email from the raw tool arguments.
// Malformed addresses are ignored so they never reach the OAuth state.
func extractUserEmail(req mcp.Request) string {
	params, ok := req.GetParams().(*mcp.CallToolParamsRaw)
	if !ok || params == nil {
		return ""
	}
	var args struct {
		UserEmail string `json:"user_google_email"`
	}
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		return ""
	}
	if validate.Email(args.UserEmail) != nil {
		return ""
	}
	return args.UserEmail
}
