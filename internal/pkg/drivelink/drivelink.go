// Package drivelink turns Google Drive share links into direct image URLs.
//
// Admins paste Drive links in several shapes (file view links, open-by-id
// links, folder links). Browsers cannot render those as <img> sources, so the
// resolver extracts the file id and produces an ordered list of direct-access
// candidates. Anything it cannot classify is passed through unchanged.
package drivelink

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// DefaultMinFileIDLength is the shortest file id Validate accepts.
// Drive ids are conventionally 25+ characters; this is a heuristic, not a
// platform guarantee.
const DefaultMinFileIDLength = 25

// ProxyRefreshSeconds is the cache-refresh hint (30 days) sent to the image proxy.
const ProxyRefreshSeconds = 2592000

const driveHost = "drive.google.com"

// resolvedMarkers identify URLs that are already in one of the candidate shapes.
var resolvedMarkers = []string{
	"drive.google.com/uc?export=view",
	"images1-focus-opensocial.googleusercontent.com",
	"drive.google.com/thumbnail",
}

// idPatterns are tried in order; the first match wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`),
}

// Validation messages returned in ValidationResult.
const (
	ErrEmpty       = "empty or invalid"
	ErrFormat      = "invalid format"
	ErrNoFileID    = "could not extract file id"
	ErrIDTooShort  = "file id too short"
	NoteNotDrive   = "not a Drive URL"
	NoteValidDrive = "valid Drive URL"
)

// ValidationResult is the diagnostic outcome of Validate.
type ValidationResult struct {
	Valid        bool   `json:"valid" yaml:"valid"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
	Note         string `json:"note,omitempty" yaml:"note,omitempty"`
	FileID       string `json:"fileId,omitempty" yaml:"fileId,omitempty"`
	ConvertedURL string `json:"convertedUrl,omitempty" yaml:"convertedUrl,omitempty"`
}

// Resolver classifies Drive links. The zero value is usable and applies
// DefaultMinFileIDLength and slog.Default. A Resolver holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	// MinFileIDLength overrides DefaultMinFileIDLength when positive.
	MinFileIDLength int
	Logger          *slog.Logger
}

// New creates a Resolver with the given minimum id length (0 = default).
func New(minFileIDLength int, logger *slog.Logger) *Resolver {
	return &Resolver{MinFileIDLength: minFileIDLength, Logger: logger}
}

func (r *Resolver) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Resolver) minLength() int {
	if r == nil || r.MinFileIDLength <= 0 {
		return DefaultMinFileIDLength
	}
	return r.MinFileIDLength
}

// GenerateCandidates returns the direct-access URLs to try for input, most
// reliable first. Inputs that need no conversion, or cannot be converted,
// come back as a single-element list holding input unchanged.
func (r *Resolver) GenerateCandidates(input string) []string {
	if input == "" {
		return []string{input}
	}
	if IsResolved(input) {
		return []string{input}
	}
	if !IsDriveURL(input) {
		return []string{input}
	}

	id, ok := ExtractFileID(input)
	if !ok {
		r.logger().Warn("could not extract Drive file id, using URL as-is", "url", input)
		return []string{input}
	}
	return Candidates(id)
}

// SelectBest returns the first candidate for input. It never touches the network.
func (r *Resolver) SelectBest(input string) string {
	return r.GenerateCandidates(input)[0]
}

// Validate reports whether input is a usable Drive image link.
func (r *Resolver) Validate(input string) ValidationResult {
	if input == "" {
		return ValidationResult{Error: ErrEmpty}
	}
	if !parsesAsURL(input) {
		return ValidationResult{Error: ErrFormat}
	}
	if !IsDriveURL(input) {
		return ValidationResult{Valid: true, Note: NoteNotDrive}
	}

	id, ok := ExtractFileID(input)
	if !ok {
		return ValidationResult{Error: ErrNoFileID}
	}
	if len(id) < r.minLength() {
		return ValidationResult{Error: ErrIDTooShort}
	}
	return ValidationResult{
		Valid:        true,
		FileID:       id,
		ConvertedURL: DirectURL(id),
		Note:         NoteValidDrive,
	}
}

// ExtractFileID returns the Drive file id embedded in s, trying the
// /file/d/, ?id= (or &id=) and /folders/ shapes in that order.
func ExtractFileID(s string) (string, bool) {
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// IsResolved reports whether s already has one of the candidate shapes.
func IsResolved(s string) bool {
	for _, marker := range resolvedMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// IsDriveURL reports whether s mentions the Drive host anywhere.
func IsDriveURL(s string) bool {
	return strings.Contains(s, driveHost)
}

// DirectURL is the uc?export=view content URL for id.
func DirectURL(id string) string {
	return "https://drive.google.com/uc?export=view&id=" + id
}

// Candidates builds the ordered fallback list for a known file id.
func Candidates(id string) []string {
	direct := DirectURL(id)
	return []string{
		direct,
		"https://drive.google.com/thumbnail?id=" + id + "&sz=w1200",
		fmt.Sprintf("https://images1-focus-opensocial.googleusercontent.com/gadgets/proxy?container=focus&refresh=%d&url=%s", ProxyRefreshSeconds, direct),
		direct + "&sz=w1200",
	}
}

// parsesAsURL mirrors an absolute-URL parse: a scheme is required, and
// either a host or an opaque part.
func parsesAsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

var defaultResolver = &Resolver{}

// GenerateCandidates calls GenerateCandidates on the default resolver.
func GenerateCandidates(input string) []string { return defaultResolver.GenerateCandidates(input) }

// SelectBest calls SelectBest on the default resolver.
func SelectBest(input string) string { return defaultResolver.SelectBest(input) }

// Validate calls Validate on the default resolver.
func Validate(input string) ValidationResult { return defaultResolver.Validate(input) }
