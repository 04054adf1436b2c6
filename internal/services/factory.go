// Package services builds authenticated Google API clients for tool handlers.
package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/evert/drive-image-mcp-go/internal/auth"
	"github.com/evert/drive-image-mcp-go/internal/pkg/validate"
)

// Factory manages authenticated Drive clients per user email.
// HTTP clients are cached with ReuseTokenSource for concurrency-safe auto-refresh.
type Factory struct {
	oauthConfig *oauth2.Config
	tokenStore  auth.TokenStore
	opts        []option.ClientOption
	mu          sync.RWMutex
	clients     map[string]*http.Client
}

// NewFactory creates a service factory backed by the given OAuth manager.
// Extra client options are appended when building each service.
func NewFactory(oauthMgr *auth.OAuthManager, opts ...option.ClientOption) *Factory {
	return &Factory{
		oauthConfig: oauthMgr.Config(),
		tokenStore:  oauthMgr.TokenStore(),
		opts:        opts,
		clients:     make(map[string]*http.Client),
	}
}

// clientFor returns a cached, auto-refreshing HTTP client for the user.
// The token source is bound to context.Background() so the cached client
// outlives the request; each API call passes its own ctx via .Context(ctx).
func (f *Factory) clientFor(userEmail string) (*http.Client, error) {
	f.mu.RLock()
	client, ok := f.clients[userEmail]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[userEmail]; ok {
		return client, nil
	}

	token, err := f.tokenStore.Load(userEmail)
	if err != nil {
		return nil, err
	}

	bgCtx := context.Background()
	reuseSource := oauth2.ReuseTokenSource(token, &auth.PersistingTokenSource{
		Base:      f.oauthConfig.TokenSource(bgCtx, token),
		Store:     f.tokenStore,
		UserEmail: userEmail,
	})

	client = oauth2.NewClient(bgCtx, reuseSource)
	f.clients[userEmail] = client
	return client, nil
}

// InvalidateClient drops the cached HTTP client for a user so the next call
// rebuilds it from the latest persisted token.
func (f *Factory) InvalidateClient(userEmail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, userEmail)
}

// Drive returns a Drive service client for the given user.
func (f *Factory) Drive(ctx context.Context, userEmail string) (*drive.Service, error) {
	if userEmail == "" {
		return nil, fmt.Errorf("user_google_email is required for Drive API tools")
	}
	if err := validate.Email(userEmail); err != nil {
		return nil, err
	}
	client, err := f.clientFor(userEmail)
	if err != nil {
		return nil, fmt.Errorf("drive client for %s: %w", userEmail, err)
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, f.opts...)
	return drive.NewService(ctx, opts...)
}
