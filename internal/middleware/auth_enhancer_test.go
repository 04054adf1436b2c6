package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/drive-image-mcp-go/internal/auth"
)

func testOAuthMgr() *auth.OAuthManager {
	return auth.NewOAuthManager(
		"test-client-id",
		"test-client-secret",
		"http://localhost:8000/oauth/callback",
		auth.AllScopes(nil, true),
		auth.NewInMemoryTokenStore(),
	)
}

// fakeToolRequest builds a check_drive_image_access call with the given arguments JSON.
func fakeToolRequest(argsJSON string) mcp.Request {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      "check_drive_image_access",
			Arguments: json.RawMessage(argsJSON),
		},
	}
}

func returning(result *mcp.CallToolResult, err error) mcp.MethodHandler {
	return func(context.Context, string, mcp.Request) (mcp.Result, error) {
		return result, err
	}
}

func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func TestAuthEnhancer(t *testing.T) {
	const withEmail = `{"user_google_email":"admin@example.com","url":"https://drive.google.com/open?id=abc"}`
	noCreds := "drive client for admin@example.com: no credentials found for admin@example.com — call start_google_auth to authenticate"
	expired := "authentication expired for this user — call start_google_auth tool to re-authenticate"
	notFound := "resource not found — verify the file ID is correct"

	tests := []struct {
		name     string
		result   *mcp.CallToolResult
		args     string
		enhanced bool
	}{
		{"no credentials", toolError(noCreds), withEmail, true},
		{"expired", toolError(expired), withEmail, true},
		{"scope missing", toolError("permission denied — the Drive scope may not be granted. Suggest the user re-authenticate with start_google_auth."), withEmail, true},
		{"not auth related", toolError(notFound), withEmail, false},
		{"no email argument", toolError(noCreds), `{"url":"x"}`, false},
		{"malformed email", toolError(noCreds), `{"user_google_email":"admin"}`, false},
		{"bad json", toolError(noCreds), `{`, false},
		{"success", &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "start_google_auth"}}}, withEmail, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.result.Content[0].(*mcp.TextContent).Text
			handler := AuthEnhancerMiddleware(testOAuthMgr())(returning(tt.result, nil))

			result, err := handler(context.Background(), "tools/call", fakeToolRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			text := result.(*mcp.CallToolResult).Content[0].(*mcp.TextContent).Text

			if !tt.enhanced {
				if text != before {
					t.Errorf("text changed to %q", text)
				}
				return
			}
			if !strings.HasPrefix(text, before) {
				t.Errorf("original error text lost: %s", text)
			}
			for _, want := range []string{"Sign in to Google Drive as admin@example.com", "accounts.google.com", "test-client-id"} {
				if !strings.Contains(text, want) {
					t.Errorf("enhanced text missing %q: %s", want, text)
				}
			}
		})
	}
}

func TestAuthEnhancerPassesOtherMethods(t *testing.T) {
	next := func(context.Context, string, mcp.Request) (mcp.Result, error) {
		return &mcp.ListToolsResult{}, nil
	}
	handler := AuthEnhancerMiddleware(testOAuthMgr())(next)

	result, err := handler(context.Background(), "tools/list", &mcp.ServerRequest[*mcp.ListToolsParams]{Params: &mcp.ListToolsParams{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.(*mcp.ListToolsResult); !ok {
		t.Errorf("result = %T, want *mcp.ListToolsResult", result)
	}
}

func TestAuthEnhancerTypedNilResult(t *testing.T) {
	// The SDK returns a typed-nil result when argument validation fails before the handler runs.
	wantErr := errors.New("validation failed: missing required field")
	handler := AuthEnhancerMiddleware(testOAuthMgr())(returning(nil, wantErr))

	result, err := handler(context.Background(), "tools/call", fakeToolRequest(`{"user_google_email":"admin@example.com"}`))
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if r, ok := result.(*mcp.CallToolResult); ok && r != nil {
		t.Errorf("result = %+v, want nil", r)
	}
}

func TestIsAuthRelatedError(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"No credentials found for a@b.co", true},
		{"authentication expired for this user", true},
		{"call start_google_auth", true},
		{"rate limit exceeded for the Drive API", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isAuthRelatedError(tt.text); got != tt.want {
			t.Errorf("isAuthRelatedError(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
