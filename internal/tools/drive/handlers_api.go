package drive

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/drive/v3"

	"github.com/evert/drive-image-mcp-go/internal/catalog"
	"github.com/evert/drive-image-mcp-go/internal/middleware"
	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
	"github.com/evert/drive-image-mcp-go/internal/pkg/response"
	"github.com/evert/drive-image-mcp-go/internal/services"
)

// --- check_drive_image_access ---

type CheckAccessInput struct {
	UserEmail string `json:"user_google_email" jsonschema:"required" jsonschema_description:"The user's Google email address"`
	URL       string `json:"url" jsonschema:"required" jsonschema_description:"A Drive link or a bare Drive file ID"`
}

type CheckAccessOutput struct {
	Access   catalog.AccessCheck `json:"access"`
	ImageURL string              `json:"image_url"`
	Usable   bool                `json:"usable"`
}

func createCheckAccessHandler(factory *services.Factory) mcp.ToolHandlerFor[CheckAccessInput, CheckAccessOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CheckAccessInput) (*mcp.CallToolResult, CheckAccessOutput, error) {
		fileID, err := fileIDFromInput(input.URL)
		if err != nil {
			return nil, CheckAccessOutput{}, err
		}

		srv, err := factory.Drive(ctx, input.UserEmail)
		if err != nil {
			return nil, CheckAccessOutput{}, middleware.HandleGoogleAPIError(err)
		}

		check, err := NewAccessChecker(srv).CheckAccess(ctx, fileID)
		if err != nil {
			return nil, CheckAccessOutput{}, err
		}

		output := CheckAccessOutput{
			Access:   check,
			ImageURL: drivelink.DirectURL(fileID),
			Usable:   check.Error == "" && check.IsImage && check.IsPublic,
		}

		rb := response.New()
		rb.Header("Drive Image Access")
		rb.KeyValue("File ID", fileID)
		if check.Error != "" {
			rb.KeyValue("Error", check.Error)
			return rb.TextResult(), output, nil
		}
		rb.KeyValue("Name", check.Name)
		rb.KeyValue("Type", formatFileType(check.MimeType))
		if size := formatSize(check.Size); size != "" {
			rb.KeyValue("Size", size)
		}
		if dims := formatDimensions(check.Width, check.Height); dims != "" {
			rb.KeyValue("Dimensions", dims)
		}
		if check.IsPublic {
			rb.KeyValue("Public", "YES — anyone with the link can view")
		} else {
			rb.KeyValue("Public", "NO — share with \"anyone with the link\" or the image will not load on the site")
		}
		rb.KeyValue("Image URL", output.ImageURL)
		rb.KeyValue("Usable on site", output.Usable)

		return rb.TextResult(), output, nil
	}
}

// --- list_drive_folder_images ---

type ListFolderImagesInput struct {
	UserEmail string `json:"user_google_email" jsonschema:"required" jsonschema_description:"The user's Google email address"`
	Folder    string `json:"folder" jsonschema:"required" jsonschema_description:"A Drive folder link or folder ID"`
	PageSize  int    `json:"page_size,omitempty" jsonschema_description:"Maximum results (default 50)"`
	PageToken string `json:"page_token,omitempty" jsonschema_description:"Token for pagination"`
}

type ListFolderImagesOutput struct {
	FolderID      string             `json:"folder_id"`
	Images        []ImageFileSummary `json:"images"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

func createListFolderImagesHandler(factory *services.Factory) mcp.ToolHandlerFor[ListFolderImagesInput, ListFolderImagesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListFolderImagesInput) (*mcp.CallToolResult, ListFolderImagesOutput, error) {
		if input.PageSize == 0 {
			input.PageSize = 50
		}

		folderID, err := fileIDFromInput(input.Folder)
		if err != nil {
			return nil, ListFolderImagesOutput{}, err
		}

		srv, err := factory.Drive(ctx, input.UserEmail)
		if err != nil {
			return nil, ListFolderImagesOutput{}, middleware.HandleGoogleAPIError(err)
		}

		q := fmt.Sprintf("'%s' in parents and mimeType contains 'image/' and trashed=false", folderID)

		call := srv.Files.List().
			Q(q).
			PageSize(int64(input.PageSize)).
			Fields("nextPageToken, files(id, name, mimeType, size, modifiedTime, imageMediaMetadata(width, height))").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			OrderBy("name").
			Context(ctx)

		if input.PageToken != "" {
			call = call.PageToken(input.PageToken)
		}

		var result *drive.FileList
		err = middleware.WithRetry(ctx, middleware.DefaultMaxRetries, func() error {
			var err error
			result, err = call.Do()
			return err
		})
		if err != nil {
			return nil, ListFolderImagesOutput{}, middleware.HandleGoogleAPIError(err)
		}

		images := make([]ImageFileSummary, 0, len(result.Files))
		rb := response.New()
		rb.Header("Drive Folder Images")
		rb.KeyValue("Folder", folderID)
		rb.KeyValue("Count", len(result.Files))
		if result.NextPageToken != "" {
			rb.KeyValue("Next page token", result.NextPageToken)
		}
		rb.Blank()

		for _, f := range result.Files {
			s := fileToSummary(f)
			images = append(images, s)
			rb.Item("%s (%s)", s.Name, formatFileType(s.MimeType))
			if size := formatSize(s.Size); size != "" {
				rb.Line("    Size: %s", size)
			}
			if dims := formatDimensions(s.Width, s.Height); dims != "" {
				rb.Line("    Dimensions: %s", dims)
			}
			rb.Line("    URL: %s", s.ImageURL)
		}

		return rb.TextResult(), ListFolderImagesOutput{
			FolderID:      folderID,
			Images:        images,
			NextPageToken: result.NextPageToken,
		}, nil
	}
}
