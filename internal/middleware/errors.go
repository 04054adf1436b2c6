package middleware

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// HandleGoogleAPIError translates Google API errors into agent-actionable messages.
// These messages tell the AI what to do next, not the end user.
func HandleGoogleAPIError(err error) error {
	if err == nil {
		return nil
	}

	var googleErr *googleapi.Error
	if !errors.As(err, &googleErr) {
		return err
	}

	switch googleErr.Code {
	case 400:
		return fmt.Errorf(
			"bad request — check that the Drive link or file ID is well formed. Detail: %s",
			googleErr.Message)
	case 401:
		return fmt.Errorf(
			"authentication expired for this user — call start_google_auth tool to re-authenticate, " +
				"or verify the OAuth configuration is correct")
	case 403:
		if isRateLimitReason(googleErr) {
			return fmt.Errorf(
				"rate limit exceeded for the Drive API — wait 30-60 seconds before retrying this tool call")
		}
		if strings.Contains(strings.ToLower(googleErr.Message), "insufficient") {
			return fmt.Errorf(
				"permission denied — the Drive scope may not be granted. "+
					"Suggest the user re-authenticate with start_google_auth. Detail: %s", googleErr.Message)
		}
		return fmt.Errorf(
			"permission denied — this account cannot see the file. Ask the file owner to share it "+
				"with \"anyone with the link\". Detail: %s", googleErr.Message)
	case 404:
		return fmt.Errorf(
			"resource not found — verify the file ID is correct and the file is shared with this user " +
				"or with anyone with the link")
	case 429:
		return fmt.Errorf(
			"rate limit exceeded for the Drive API — wait 30-60 seconds before retrying this tool call")
	case 500, 502, 503:
		return fmt.Errorf(
			"Google API server error (%d) — this is a transient issue, retry after a few seconds. Detail: %s",
			googleErr.Code, googleErr.Message)
	default:
		return fmt.Errorf("Google API error (%d): %s", googleErr.Code, googleErr.Message)
	}
}

// isRateLimitReason reports whether a 403 is Drive's per-user rate limit.
func isRateLimitReason(e *googleapi.Error) bool {
	for _, item := range e.Errors {
		if item.Reason == "userRateLimitExceeded" || item.Reason == "rateLimitExceeded" {
			return true
		}
	}
	return false
}
