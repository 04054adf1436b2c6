// Package imageproxy serves GET /image, which redirects a stored product image
// link to a URL a browser can render directly. It never fetches image bytes.
package imageproxy

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
)

// DriveHosts are the redirect targets the resolver itself produces. Entries
// starting with "." match any subdomain.
var DriveHosts = []string{"drive.google.com", ".googleusercontent.com"}

// Handler returns an http.HandlerFunc for GET /image?src=<link>[&fallback=<n>].
//
// The response is a 302 to candidate n (default 0, the best URL) of the
// link's candidate list. Pages use fallback=1,2,3 from an image onerror hook.
// Only http(s) targets on DriveHosts or allowedHosts are redirected to;
// anything else gets a 400 so the page falls back to its placeholder.
// allowedHosts entries follow the DriveHosts matching rules.
func Handler(resolver *drivelink.Resolver, allowedHosts []string, logger *slog.Logger) http.HandlerFunc {
	if resolver == nil {
		resolver = &drivelink.Resolver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	hosts := append(append([]string(nil), DriveHosts...), allowedHosts...)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		src := q.Get("src")
		if src == "" {
			http.Error(w, "missing src parameter", http.StatusBadRequest)
			return
		}

		index := 0
		if v := q.Get("fallback"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "fallback must be a non-negative integer", http.StatusBadRequest)
				return
			}
			index = n
		}

		candidates := resolver.GenerateCandidates(src)
		if index >= len(candidates) {
			http.Error(w, "no more fallback candidates", http.StatusNotFound)
			return
		}
		target := candidates[index]
		if !allowedTarget(target, hosts) {
			logger.Warn("image redirect refused", "src", src, "target", target)
			http.Error(w, "redirect target not allowed", http.StatusBadRequest)
			return
		}

		logger.Debug("image redirect", "src", src, "fallback", index, "location", target)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// allowedTarget reports whether target is an absolute http(s) URL, without
// credentials, whose host matches hosts.
func allowedTarget(target string, hosts []string) bool {
	if strings.ContainsAny(target, "\\\r\n") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil || u.User != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return HostAllowed(u.Hostname(), hosts)
}

// HostAllowed matches host against hosts: exact match, or any subdomain of an
// entry written with a leading dot.
func HostAllowed(host string, hosts []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "."):
			if strings.HasSuffix(host, h) {
				return true
			}
		case host == h:
			return true
		}
	}
	return false
}
