package catalog

import "github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"

// Image field names used in ImageRef.Field.
const (
	FieldMainImage        = "mainImage"
	FieldImage            = "image"
	FieldAdditionalImages = "additionalImages"
)

// ImageRef locates a single image link within the catalog.
type ImageRef struct {
	ProductID string `json:"product_id"`
	Field     string `json:"field"`
	Index     int    `json:"index"`
	URL       string `json:"url"`
}

// ImageRefs returns every non-empty image link in catalog order.
func (c *Catalog) ImageRefs() []ImageRef {
	var refs []ImageRef
	for _, p := range c.Products {
		refs = append(refs, p.ImageRefs()...)
	}
	return refs
}

// ImageRefs returns the product's non-empty image links.
func (p *Product) ImageRefs() []ImageRef {
	var refs []ImageRef
	if p.MainImage != "" {
		refs = append(refs, ImageRef{ProductID: p.ID, Field: FieldMainImage, URL: p.MainImage})
	}
	if p.Image != "" {
		refs = append(refs, ImageRef{ProductID: p.ID, Field: FieldImage, URL: p.Image})
	}
	for i, u := range p.AdditionalImages {
		if u == "" {
			continue
		}
		refs = append(refs, ImageRef{ProductID: p.ID, Field: FieldAdditionalImages, Index: i, URL: u})
	}
	return refs
}

// PrimaryImage returns the link the site renders for the product card.
func (p *Product) PrimaryImage() string {
	if p.MainImage != "" {
		return p.MainImage
	}
	return p.Image
}

// NormalizeImages replaces every image link with the resolver's best
// candidate and returns how many fields changed. Running it twice changes
// nothing the second time.
func (c *Catalog) NormalizeImages(r *drivelink.Resolver) int {
	changed := 0
	for i := range c.Products {
		changed += c.Products[i].NormalizeImages(r)
	}
	return changed
}

// NormalizeImages rewrites the product's image links in place.
func (p *Product) NormalizeImages(r *drivelink.Resolver) int {
	changed := 0
	set := func(s *string) {
		if *s == "" {
			return
		}
		if best := r.SelectBest(*s); best != *s {
			*s = best
			changed++
		}
	}
	set(&p.MainImage)
	set(&p.Image)
	for i := range p.AdditionalImages {
		set(&p.AdditionalImages[i])
	}
	return changed
}
