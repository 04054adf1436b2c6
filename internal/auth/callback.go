package auth

import (
	"html/template"
	"log/slog"
	"net/http"
)

// ClientInvalidator is called after successful OAuth to clear cached API clients.
type ClientInvalidator interface {
	InvalidateClient(userEmail string)
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { font-family: system-ui, sans-serif; background: #1a1a1a; color: #e0e0e0;
           min-height: 100vh; margin: 0; display: flex; align-items: center; justify-content: center; }
    .card { background: #2d2d2d; border: 1px solid #444; border-radius: 12px; padding: 40px;
            max-width: 460px; width: 90%; text-align: center; }
    h1 { font-size: 22px; color: {{if .OK}}#4caf50{{else}}#ff6b6b{{end}}; }
    .detail { font-size: 15px; word-break: break-word; }
    .hint { font-size: 13px; color: #888; margin-top: 24px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{.Title}}</h1>
    <p class="detail">{{.Detail}}</p>
    <p class="hint">{{.Hint}}</p>
  </div>
</body>
</html>
`))

type page struct {
	OK     bool
	Title  string
	Detail string
	Hint   string
}

// OAuthCallbackHandler returns an http.HandlerFunc that handles the OAuth 2.0 callback.
// It verifies the signed state, exchanges the authorization code for a token
// and persists it. If invalidator is non-nil, the user's cached API client is
// evicted so the next call picks up the fresh token.
func OAuthCallbackHandler(oauthMgr *OAuthManager, invalidator ClientInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code := q.Get("code")
		state := q.Get("state")

		if errMsg := q.Get("error"); errMsg != "" {
			slog.Error("OAuth callback error", "error", errMsg)
			renderFailure(w, http.StatusBadRequest, errMsg)
			return
		}
		if code == "" {
			slog.Error("OAuth callback missing code")
			renderFailure(w, http.StatusBadRequest, "No authorization code received from Google.")
			return
		}

		email, ok := oauthMgr.VerifyAndExtractEmail(state)
		if !ok {
			slog.Error("OAuth callback state verification failed")
			renderFailure(w, http.StatusBadRequest, "Invalid or tampered OAuth state. Restart authentication from the MCP client.")
			return
		}

		if _, err := oauthMgr.ExchangeCode(r.Context(), code, email); err != nil {
			slog.Error("OAuth token exchange failed", "email", email, "error", err)
			renderFailure(w, http.StatusInternalServerError, "Token exchange failed: "+err.Error())
			return
		}

		if invalidator != nil {
			invalidator.InvalidateClient(email)
			slog.Info("invalidated cached client after re-auth", "email", email)
		}

		slog.Info("OAuth authentication successful", "email", email)
		render(w, http.StatusOK, page{
			OK:     true,
			Title:  "Authentication Successful",
			Detail: email,
			Hint:   "Drive image checks are now available for this account. You can close this window.",
		})
	}
}

func renderFailure(w http.ResponseWriter, status int, detail string) {
	render(w, status, page{
		Title:  "Authentication Failed",
		Detail: detail,
		Hint:   "Return to the MCP client and try again.",
	})
}

func render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, p); err != nil {
		slog.Error("rendering OAuth callback page", "error", err)
	}
}
