package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	iauth "github.com/evert/drive-image-mcp-go/internal/auth"
)

func testManager(t *testing.T) *iauth.OAuthManager {
	t.Helper()
	return iauth.NewOAuthManager(
		"test-client-id",
		"test-secret",
		"http://localhost:8000/oauth/callback",
		iauth.AllScopes(nil, true),
		iauth.NewInMemoryTokenStore(),
	)
}

func TestStartAuthReturnsSignedURL(t *testing.T) {
	mgr := testManager(t)
	handler := createStartAuthHandler(mgr)

	result, out, err := handler(context.Background(), &mcp.CallToolRequest{}, StartAuthInput{UserEmail: "admin@example.com"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	u, err := url.Parse(out.AuthURL)
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}
	if u.Query().Get("client_id") != "test-client-id" {
		t.Errorf("client_id = %q", u.Query().Get("client_id"))
	}
	email, ok := mgr.VerifyAndExtractEmail(u.Query().Get("state"))
	if !ok || email != "admin@example.com" {
		t.Errorf("state verifies to (%q, %v), want admin@example.com", email, ok)
	}

	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, out.AuthURL) {
		t.Errorf("text result missing auth URL:\n%s", text)
	}
}

func TestStartAuthRejectsBadEmail(t *testing.T) {
	handler := createStartAuthHandler(testManager(t))
	if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, StartAuthInput{UserEmail: "not-an-email"}); err == nil {
		t.Error("expected error for malformed email")
	}
}
