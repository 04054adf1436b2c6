package drive

import (
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
	"github.com/evert/drive-image-mcp-go/internal/pkg/format"
	"github.com/evert/drive-image-mcp-go/internal/pkg/validate"
)

const folderMimeType = "application/vnd.google-apps.folder"

// ImageFileSummary is a compact representation of a Drive image file.
type ImageFileSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size,omitempty"`
	Width        int64  `json:"width,omitempty"`
	Height       int64  `json:"height,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty"`
	ImageURL     string `json:"image_url"`
}

// fileToSummary converts a Drive file to a compact summary with its direct image URL.
func fileToSummary(f *drive.File) ImageFileSummary {
	s := ImageFileSummary{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
		ImageURL:     drivelink.DirectURL(f.Id),
	}
	if m := f.ImageMediaMetadata; m != nil {
		s.Width, s.Height = m.Width, m.Height
	}
	return s
}

// formatFileType returns a human-readable file type from a MIME type.
func formatFileType(mimeType string) string {
	switch mimeType {
	case folderMimeType:
		return "Folder"
	case "application/pdf":
		return "PDF"
	case "":
		return "unknown"
	default:
		if strings.HasPrefix(mimeType, "image/") {
			return "Image (" + strings.TrimPrefix(mimeType, "image/") + ")"
		}
		if strings.HasPrefix(mimeType, "application/vnd.google-apps.") {
			return "Google " + strings.TrimPrefix(mimeType, "application/vnd.google-apps.")
		}
		return mimeType
	}
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	return format.ByteSize(bytes)
}

// formatDimensions returns "WxH px" for images Drive has measured.
func formatDimensions(width, height int64) string {
	return format.Dimensions(width, height)
}

// isImageType reports whether Drive will serve the file as an image.
func isImageType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// fileIDFromInput accepts a Drive link or a bare file ID and returns a
// validated file ID.
func fileIDFromInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("a Drive link or file ID is required")
	}
	if drivelink.IsDriveURL(input) {
		id, ok := drivelink.ExtractFileID(input)
		if !ok {
			return "", fmt.Errorf("could not extract a file ID from %q — expected a /file/d/, ?id= or /folders/ link", input)
		}
		return id, nil
	}
	if err := validate.DriveID(input); err != nil {
		return "", err
	}
	return input, nil
}

// statusMark renders a finding status for text output.
func statusMark(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}
