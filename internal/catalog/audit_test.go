package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"

	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
)

type fakeChecker struct {
	calls   atomic.Int32
	private map[string]bool
	err     error
}

func (f *fakeChecker) CheckAccess(_ context.Context, fileID string) (AccessCheck, error) {
	f.calls.Add(1)
	if f.err != nil {
		return AccessCheck{}, f.err
	}
	return AccessCheck{
		FileID:   fileID,
		MimeType: "image/jpeg",
		IsImage:  true,
		IsPublic: !f.private[fileID],
	}, nil
}

func auditCatalog() *Catalog {
	return &Catalog{Products: []Product{
		{
			ID:        "p1",
			MainImage: "https://drive.google.com/file/d/1A7Vd0Zvcfk0TEfMf4bzyrpiRkcOHlsDI/view",
			AdditionalImages: []string{
				"https://example.com/a.jpg",
				"https://drive.google.com/file/d/SHORT/view",
			},
		},
		{
			ID:    "p2",
			Image: "https://drive.google.com/weird/unknown/path",
			AdditionalImages: []string{
				"https://drive.google.com/open?id=1B8We1Awdgl1UFgNg5cazsqjSldPImtEJ",
			},
		},
	}}
}

func TestAuditWithoutChecker(t *testing.T) {
	a := &Auditor{Resolver: drivelink.New(0, nil), Concurrency: 2}
	report, err := a.Audit(context.Background(), auditCatalog())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if report.ID == "" {
		t.Error("report ID is empty")
	}
	if report.Products != 2 || report.Images != 5 {
		t.Errorf("products/images = %d/%d, want 2/5", report.Products, report.Images)
	}
	if report.Valid != 3 || report.Invalid != 2 {
		t.Errorf("valid/invalid = %d/%d, want 3/2", report.Valid, report.Invalid)
	}
	if report.Passthrough != 1 {
		t.Errorf("passthrough = %d, want 1", report.Passthrough)
	}

	var gotURLs []string
	for _, f := range report.Findings {
		gotURLs = append(gotURLs, f.URL)
	}
	var wantURLs []string
	for _, r := range auditCatalog().ImageRefs() {
		wantURLs = append(wantURLs, r.URL)
	}
	if diff := cmp.Diff(wantURLs, gotURLs); diff != "" {
		t.Errorf("findings out of catalog order (-want +got):\n%s", diff)
	}

	if got := report.Findings[2].Result.Error; got != drivelink.ErrIDTooShort {
		t.Errorf("short id finding error = %q", got)
	}
}

func TestAuditWithChecker(t *testing.T) {
	checker := &fakeChecker{private: map[string]bool{"1B8We1Awdgl1UFgNg5cazsqjSldPImtEJ": true}}
	a := &Auditor{
		Resolver: drivelink.New(0, nil),
		Checker:  checker,
		Limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	report, err := a.Audit(context.Background(), auditCatalog())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	// Only the two ids that passed validation are looked up.
	if got := checker.calls.Load(); got != 2 {
		t.Errorf("checker called %d times, want 2", got)
	}
	if report.Valid != 2 {
		t.Errorf("valid = %d, want 2 (private file counts as invalid)", report.Valid)
	}
	last := report.Findings[len(report.Findings)-1]
	if last.Access == nil || last.Access.IsPublic {
		t.Errorf("expected private access check on last finding, got %+v", last.Access)
	}
}

func TestAuditCheckerError(t *testing.T) {
	a := &Auditor{
		Resolver: drivelink.New(0, nil),
		Checker:  &fakeChecker{err: errors.New("boom")},
	}
	if _, err := a.Audit(context.Background(), auditCatalog()); err == nil {
		t.Error("expected checker error to abort audit")
	}
}

func TestAuditCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &Auditor{Resolver: drivelink.New(0, nil)}
	_, err := a.Audit(ctx, auditCatalog())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Audit error = %v, want context.Canceled", err)
	}
}

func TestAuditEmptyCatalog(t *testing.T) {
	a := &Auditor{}
	report, err := a.Audit(context.Background(), &Catalog{})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if report.Images != 0 || len(report.Findings) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}
