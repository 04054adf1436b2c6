package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
)

// DefaultAuditConcurrency bounds how many image links are checked at once.
const DefaultAuditConcurrency = 4

// AccessCheck is what the Drive API says about a file id.
type AccessCheck struct {
	FileID   string `json:"file_id"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Width    int64  `json:"width,omitempty"`
	Height   int64  `json:"height,omitempty"`
	IsImage  bool   `json:"is_image"`
	IsPublic bool   `json:"is_public"`
	Error    string `json:"error,omitempty"`
}

// AccessChecker looks up a Drive file id. Implementations record lookup
// failures in AccessCheck.Error; a returned error aborts the audit.
type AccessChecker interface {
	CheckAccess(ctx context.Context, fileID string) (AccessCheck, error)
}

// AuditFinding is the verdict for one image link.
type AuditFinding struct {
	ImageRef
	Result drivelink.ValidationResult `json:"result"`
	Best   string                     `json:"best"`
	Access *AccessCheck               `json:"access,omitempty"`
}

// Passthrough reports whether the link will be rendered unconverted even
// though it points at Drive.
func (f AuditFinding) Passthrough() bool {
	return drivelink.IsDriveURL(f.URL) && f.Best == f.URL && !drivelink.IsResolved(f.URL)
}

// OK reports whether the link validated and, if checked, is a public image.
func (f AuditFinding) OK() bool {
	if !f.Result.Valid {
		return false
	}
	if f.Access != nil {
		return f.Access.Error == "" && f.Access.IsImage && f.Access.IsPublic
	}
	return true
}

// AuditReport summarizes an audit run.
type AuditReport struct {
	ID          string         `json:"id"`
	CatalogPath string         `json:"catalog_path,omitempty"`
	Products    int            `json:"products"`
	Images      int            `json:"images"`
	Valid       int            `json:"valid"`
	Invalid     int            `json:"invalid"`
	Passthrough int            `json:"passthrough"`
	Findings    []AuditFinding `json:"findings"`
}

// Auditor validates every image link in a catalog.
type Auditor struct {
	Resolver    *drivelink.Resolver
	Checker     AccessChecker // optional
	Limiter     *rate.Limiter // optional, gates Checker calls
	Concurrency int
	Logger      *slog.Logger
}

// Audit checks all image links in c. Findings follow catalog order.
func (a *Auditor) Audit(ctx context.Context, c *Catalog) (*AuditReport, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultAuditConcurrency
	}

	refs := c.ImageRefs()
	report := &AuditReport{
		ID:       uuid.NewString(),
		Products: len(c.Products),
		Images:   len(refs),
		Findings: make([]AuditFinding, len(refs)),
	}
	logger.InfoContext(ctx, "auditing catalog images",
		"audit_id", report.ID,
		"images", len(refs),
		"check_access", a.Checker != nil,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			f, err := a.check(gctx, ref)
			if err != nil {
				return fmt.Errorf("checking %s %s: %w", ref.ProductID, ref.Field, err)
			}
			report.Findings[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range report.Findings {
		if f.OK() {
			report.Valid++
		} else {
			report.Invalid++
		}
		if f.Passthrough() {
			report.Passthrough++
		}
	}

	logger.InfoContext(ctx, "catalog audit complete",
		"audit_id", report.ID,
		"valid", report.Valid,
		"invalid", report.Invalid,
	)
	return report, nil
}

func (a *Auditor) check(ctx context.Context, ref ImageRef) (AuditFinding, error) {
	if err := ctx.Err(); err != nil {
		return AuditFinding{}, err
	}

	f := AuditFinding{
		ImageRef: ref,
		Result:   a.Resolver.Validate(ref.URL),
		Best:     a.Resolver.SelectBest(ref.URL),
	}
	if a.Checker == nil || f.Result.FileID == "" {
		return f, nil
	}

	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx); err != nil {
			return AuditFinding{}, err
		}
	}
	access, err := a.Checker.CheckAccess(ctx, f.Result.FileID)
	if err != nil {
		return AuditFinding{}, err
	}
	f.Access = &access
	return f, nil
}
