package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/evert/drive-image-mcp-go/internal/catalog"
	"github.com/evert/drive-image-mcp-go/internal/middleware"
	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
	"github.com/evert/drive-image-mcp-go/internal/pkg/response"
	"github.com/evert/drive-image-mcp-go/internal/services"
)

// --- resolve_drive_image_url ---

type ResolveInput struct {
	URL string `json:"url" jsonschema:"required" jsonschema_description:"The image link as stored on the product (Drive share link or any other URL)"`
}

type ResolveOutput struct {
	Input      string   `json:"input"`
	Best       string   `json:"best"`
	Candidates []string `json:"candidates"`
	FileID     string   `json:"file_id,omitempty"`
	Converted  bool     `json:"converted"`
}

func createResolveHandler(resolver *drivelink.Resolver) mcp.ToolHandlerFor[ResolveInput, ResolveOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
		candidates := resolver.GenerateCandidates(input.URL)
		output := ResolveOutput{
			Input:      input.URL,
			Best:       candidates[0],
			Candidates: candidates,
			Converted:  candidates[0] != input.URL,
		}
		if output.Converted {
			output.FileID, _ = drivelink.ExtractFileID(input.URL)
		}

		rb := response.New()
		rb.Header("Drive Image URL")
		rb.KeyValue("Input", input.URL)
		rb.KeyValue("Best", output.Best)
		if output.Converted {
			rb.KeyValue("File ID", output.FileID)
			rb.Blank()
			rb.Section("Fallback candidates")
			rb.Numbered(candidates)
		} else {
			rb.KeyValue("Converted", "no — URL used as-is")
		}

		return rb.TextResult(), output, nil
	}
}

// --- validate_drive_image_url ---

type ValidateInput struct {
	URL string `json:"url" jsonschema:"required" jsonschema_description:"The image link to validate"`
}

func createValidateHandler(resolver *drivelink.Resolver) mcp.ToolHandlerFor[ValidateInput, drivelink.ValidationResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, drivelink.ValidationResult, error) {
		result := resolver.Validate(input.URL)

		rb := response.New()
		rb.Header("Drive Image URL Validation")
		rb.KeyValue("URL", input.URL)
		rb.KeyValue("Valid", result.Valid)
		rb.OptionalKeyValue("Error", result.Error)
		rb.OptionalKeyValue("Note", result.Note)
		rb.OptionalKeyValue("File ID", result.FileID)
		rb.OptionalKeyValue("Converted URL", result.ConvertedURL)

		return rb.TextResult(), result, nil
	}
}

// --- list_catalog_options ---

type ListOptionsInput struct {
	CatalogPath string `json:"catalog_path,omitempty" jsonschema_description:"Catalog file to read extra brands/categories from (default: server catalog)"`
}

type ListOptionsOutput struct {
	Brands      []catalog.Option `json:"brands"`
	Categories  []catalog.Option `json:"categories"`
	StockStates []catalog.Option `json:"stock_states"`
	Features    []catalog.Option `json:"features"`
}

func createListOptionsHandler(opts Options) mcp.ToolHandlerFor[ListOptionsInput, ListOptionsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListOptionsInput) (*mcp.CallToolResult, ListOptionsOutput, error) {
		cat := &catalog.Catalog{}
		if path := catalogPath(opts, input.CatalogPath); path != "" {
			loaded, err := catalog.Load(path)
			if err != nil {
				return nil, ListOptionsOutput{}, err
			}
			cat = loaded
		}

		output := ListOptionsOutput{
			Brands:      cat.BrandOptions(),
			Categories:  cat.CategoryOptions(),
			StockStates: catalog.StockStates,
			Features:    catalog.Features,
		}

		rb := response.New()
		rb.Header("Catalog Options")
		writeOptions(rb, "Brands", output.Brands)
		writeOptions(rb, "Categories", output.Categories)
		writeOptions(rb, "Stock", output.StockStates)
		writeOptions(rb, "Features", output.Features)

		return rb.TextResult(), output, nil
	}
}

func writeOptions(rb *response.Builder, title string, options []catalog.Option) {
	rb.Section("%s", title)
	for _, o := range options {
		rb.Item("%s (%s)", o.Label, o.Value)
	}
	rb.Blank()
}

// --- search_catalog_products ---

type SearchProductsInput struct {
	CatalogPath string `json:"catalog_path,omitempty" jsonschema_description:"Catalog file (default: server catalog)"`
	Brand       string `json:"brand,omitempty" jsonschema_description:"Brand value to match"`
	Category    string `json:"category,omitempty" jsonschema_description:"Category value to match"`
	Stock       string `json:"stock,omitempty" jsonschema_description:"Stock state value to match"`
	Feature     string `json:"feature,omitempty" jsonschema_description:"Feature value the product must have"`
	Text        string `json:"text,omitempty" jsonschema_description:"Case-insensitive text to find in name or description"`
	SortBy      string `json:"sort_by,omitempty" jsonschema_description:"Sort order: name, name-desc, price, price-desc (default name)"`
}

type ProductResult struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
	Stock    string  `json:"stock,omitempty"`
	Price    float64 `json:"price,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}

type SearchProductsOutput struct {
	Products    []ProductResult `json:"products"`
	ResultCount int             `json:"result_count"`
}

func createSearchProductsHandler(opts Options) mcp.ToolHandlerFor[SearchProductsInput, SearchProductsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchProductsInput) (*mcp.CallToolResult, SearchProductsOutput, error) {
		cat, err := loadCatalog(opts, input.CatalogPath)
		if err != nil {
			return nil, SearchProductsOutput{}, err
		}

		products := catalog.Filter(cat.Products, catalog.Query{
			Brand:    input.Brand,
			Category: input.Category,
			Stock:    input.Stock,
			Feature:  input.Feature,
			Text:     input.Text,
		})
		if err := catalog.SortProducts(products, input.SortBy); err != nil {
			return nil, SearchProductsOutput{}, err
		}

		brands := cat.BrandOptions()
		results := make([]ProductResult, 0, len(products))
		rb := response.New()
		rb.Header("Catalog Products")
		rb.KeyValue("Results", len(products))
		rb.Blank()
		for _, p := range products {
			r := ProductResult{
				ID:       p.ID,
				Name:     p.Name,
				Brand:    p.Brand,
				Category: p.Category,
				Stock:    p.Stock,
				Price:    p.Price,
			}
			if img := p.PrimaryImage(); img != "" {
				r.ImageURL = opts.Resolver.SelectBest(img)
			}
			results = append(results, r)

			rb.Item("%s — %s", p.Name, catalog.LabelFor(brands, p.Brand))
			rb.Line("    ID: %s | Stock: %s | Price: %.2f", p.ID, catalog.LabelFor(catalog.StockStates, p.Stock), p.Price)
			if r.ImageURL != "" {
				rb.Line("    Image: %s", r.ImageURL)
			}
		}

		return rb.TextResult(), SearchProductsOutput{Products: results, ResultCount: len(results)}, nil
	}
}

// --- audit_catalog_images ---

var errDriveAPIDisabled = errors.New("check_access needs the Drive API — enable the drive service " +
	"(ENABLED_SERVICES or --tools including \"drive\") and set GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET, " +
	"or run the audit without check_access")

type AuditInput struct {
	CatalogPath string `json:"catalog_path,omitempty" jsonschema_description:"Catalog file to audit (default: server catalog)"`
	CheckAccess bool   `json:"check_access,omitempty" jsonschema_description:"Also verify each Drive file through the Drive API (requires user_google_email)"`
	UserEmail   string `json:"user_google_email,omitempty" jsonschema_description:"The user's Google email address, required with check_access"`
	OnlyFailing bool   `json:"only_failing,omitempty" jsonschema_description:"Only list failing links in the text output"`
}

func createAuditHandler(factory *services.Factory, opts Options) mcp.ToolHandlerFor[AuditInput, catalog.AuditReport] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AuditInput) (*mcp.CallToolResult, catalog.AuditReport, error) {
		if input.CheckAccess && !opts.DriveAPI {
			return nil, catalog.AuditReport{}, errDriveAPIDisabled
		}
		path := catalogPath(opts, input.CatalogPath)
		cat, err := loadCatalog(opts, input.CatalogPath)
		if err != nil {
			return nil, catalog.AuditReport{}, err
		}

		auditor := &catalog.Auditor{
			Resolver:    opts.Resolver,
			Concurrency: opts.AuditConcurrency,
		}
		if input.CheckAccess {
			if input.UserEmail == "" {
				return nil, catalog.AuditReport{}, fmt.Errorf("user_google_email is required when check_access is true")
			}
			srv, err := factory.Drive(ctx, input.UserEmail)
			if err != nil {
				return nil, catalog.AuditReport{}, middleware.HandleGoogleAPIError(err)
			}
			auditor.Checker = NewAccessChecker(srv)
			if opts.DriveQPS > 0 {
				auditor.Limiter = rate.NewLimiter(rate.Limit(opts.DriveQPS), 1)
			}
		}

		report, err := auditor.Audit(ctx, cat)
		if err != nil {
			return nil, catalog.AuditReport{}, err
		}
		report.CatalogPath = path

		rb := response.New()
		rb.Header("Catalog Image Audit")
		rb.KeyValue("Catalog", path)
		rb.KeyValue("Audit ID", report.ID)
		rb.KeyValue("Products", report.Products)
		rb.KeyValue("Images", report.Images)
		rb.KeyValue("Valid", report.Valid)
		rb.KeyValue("Invalid", report.Invalid)
		rb.KeyValue("Unconverted Drive links", report.Passthrough)
		rb.Blank()
		for _, f := range report.Findings {
			ok := f.OK()
			if ok && input.OnlyFailing {
				continue
			}
			rb.Item("[%s] %s %s", statusMark(ok), f.ProductID, fieldLabel(f.ImageRef))
			rb.Line("    URL: %s", f.URL)
			if reason := findingReason(f); reason != "" {
				rb.Line("    Problem: %s", reason)
			}
			if f.Best != f.URL {
				rb.Line("    Use: %s", f.Best)
			}
		}

		return rb.TextResult(), *report, nil
	}
}

// --- normalize_catalog_images ---

type NormalizeInput struct {
	CatalogPath string `json:"catalog_path,omitempty" jsonschema_description:"Catalog file to normalize (default: server catalog)"`
	Write       bool   `json:"write,omitempty" jsonschema_description:"Save the rewritten catalog (default false: preview only)"`
}

type NormalizedImage struct {
	ProductID string `json:"product_id"`
	Field     string `json:"field"`
	Index     int    `json:"index"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type NormalizeOutput struct {
	CatalogPath string            `json:"catalog_path"`
	Changed     int               `json:"changed"`
	Written     bool              `json:"written"`
	Changes     []NormalizedImage `json:"changes"`
}

func createNormalizeHandler(opts Options) mcp.ToolHandlerFor[NormalizeInput, NormalizeOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NormalizeInput) (*mcp.CallToolResult, NormalizeOutput, error) {
		path := catalogPath(opts, input.CatalogPath)
		cat, err := loadCatalog(opts, input.CatalogPath)
		if err != nil {
			return nil, NormalizeOutput{}, err
		}

		before := cat.ImageRefs()
		changed := cat.NormalizeImages(opts.Resolver)
		after := cat.ImageRefs()

		output := NormalizeOutput{CatalogPath: path, Changed: changed, Changes: []NormalizedImage{}}
		for i := range before {
			if before[i].URL == after[i].URL {
				continue
			}
			output.Changes = append(output.Changes, NormalizedImage{
				ProductID: before[i].ProductID,
				Field:     before[i].Field,
				Index:     before[i].Index,
				From:      before[i].URL,
				To:        after[i].URL,
			})
		}

		if input.Write && changed > 0 {
			if err := cat.Save(path); err != nil {
				return nil, NormalizeOutput{}, err
			}
			output.Written = true
		}

		rb := response.New()
		rb.Header("Normalize Catalog Images")
		rb.KeyValue("Catalog", path)
		rb.KeyValue("Changed", changed)
		if output.Written {
			rb.KeyValue("Saved", "yes")
		} else if changed > 0 {
			rb.KeyValue("Saved", "no — preview only, call again with write=true")
		}
		rb.Blank()
		for _, c := range output.Changes {
			rb.Item("%s %s", c.ProductID, fieldLabel(catalog.ImageRef{Field: c.Field, Index: c.Index}))
			rb.Line("    %s", c.From)
			rb.Line("    → %s", c.To)
		}

		return rb.TextResult(), output, nil
	}
}

// catalogPath picks the input path, falling back to the configured one.
func catalogPath(opts Options, input string) string {
	if p := strings.TrimSpace(input); p != "" {
		return p
	}
	return opts.CatalogPath
}

func loadCatalog(opts Options, input string) (*catalog.Catalog, error) {
	path := catalogPath(opts, input)
	if path == "" {
		return nil, fmt.Errorf("no catalog configured — set CATALOG_PATH or pass catalog_path")
	}
	return catalog.Load(path)
}

func fieldLabel(ref catalog.ImageRef) string {
	if ref.Field == catalog.FieldAdditionalImages {
		return fmt.Sprintf("%s[%d]", ref.Field, ref.Index)
	}
	return ref.Field
}

// findingReason explains why a finding failed, or returns "".
func findingReason(f catalog.AuditFinding) string {
	if f.Result.Error != "" {
		return f.Result.Error
	}
	if f.Access == nil {
		return ""
	}
	switch {
	case f.Access.Error != "":
		return f.Access.Error
	case !f.Access.IsImage:
		return fmt.Sprintf("not an image (%s)", formatFileType(f.Access.MimeType))
	case !f.Access.IsPublic:
		return "not shared with anyone with the link"
	}
	return ""
}
