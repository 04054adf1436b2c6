package drive

import (
	"context"

	"google.golang.org/api/drive/v3"

	"github.com/evert/drive-image-mcp-go/internal/catalog"
	"github.com/evert/drive-image-mcp-go/internal/middleware"
)

// accessChecker implements catalog.AccessChecker against the Drive API.
type accessChecker struct {
	srv *drive.Service
}

// NewAccessChecker returns a catalog.AccessChecker backed by srv.
func NewAccessChecker(srv *drive.Service) catalog.AccessChecker {
	return &accessChecker{srv: srv}
}

// CheckAccess fetches the file's metadata and permissions. API failures are
// recorded on the result; only context cancellation is returned as an error.
func (c *accessChecker) CheckAccess(ctx context.Context, fileID string) (catalog.AccessCheck, error) {
	out := catalog.AccessCheck{FileID: fileID}

	var file *drive.File
	err := middleware.WithRetry(ctx, middleware.DefaultMaxRetries, func() error {
		var err error
		file, err = c.srv.Files.Get(fileID).
			Fields("id, name, mimeType, size, imageMediaMetadata(width, height)").
			SupportsAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		out.Error = middleware.HandleGoogleAPIError(err).Error()
		return out, nil
	}

	out.Name = file.Name
	out.MimeType = file.MimeType
	out.Size = file.Size
	if m := file.ImageMediaMetadata; m != nil {
		out.Width, out.Height = m.Width, m.Height
	}
	out.IsImage = isImageType(file.MimeType)

	var perms *drive.PermissionList
	err = middleware.WithRetry(ctx, middleware.DefaultMaxRetries, func() error {
		var err error
		perms, err = c.srv.Permissions.List(fileID).
			Fields("permissions(id, role, type)").
			SupportsAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		out.Error = middleware.HandleGoogleAPIError(err).Error()
		return out, nil
	}

	for _, p := range perms.Permissions {
		if p.Type == "anyone" {
			out.IsPublic = true
			break
		}
	}
	return out, nil
}
