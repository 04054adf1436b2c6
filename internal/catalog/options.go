package catalog

// Option is a label/value pair shown in admin dropdowns and site filters.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Brands carried by the store.
var Brands = []Option{
	{Label: "Hartmann Tresore", Value: "hartmann"},
	{Label: "Burg-Wächter", Value: "burg-waechter"},
	{Label: "Chubbsafes", Value: "chubbsafes"},
	{Label: "Phoenix Safe", Value: "phoenix"},
	{Label: "Format", Value: "format"},
	{Label: "Technomax", Value: "technomax"},
}

// Categories of products.
var Categories = []Option{
	{Label: "Safes", Value: "safes"},
	{Label: "Fireproof Safes", Value: "fireproof-safes"},
	{Label: "Gun Safes", Value: "gun-safes"},
	{Label: "Armored Cabinets", Value: "armored-cabinets"},
	{Label: "Deposit Safes", Value: "deposit-safes"},
	{Label: "Anchoring Systems", Value: "anchoring-systems"},
}

// StockStates a product can be in.
var StockStates = []Option{
	{Label: "In stock", Value: "in-stock"},
	{Label: "On order", Value: "on-order"},
	{Label: "Out of stock", Value: "out-of-stock"},
}

// Features a product can advertise.
var Features = []Option{
	{Label: "Fire resistant", Value: "fire-resistant"},
	{Label: "Electronic lock", Value: "electronic-lock"},
	{Label: "Biometric lock", Value: "biometric-lock"},
	{Label: "Key lock", Value: "key-lock"},
	{Label: "Water resistant", Value: "water-resistant"},
	{Label: "Anchoring kit included", Value: "anchoring-kit"},
	{Label: "Insurance certified", Value: "insurance-certified"},
}

// LabelFor returns the label for value, or value itself when unknown.
func LabelFor(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// mergeOptions appends extra to base, skipping values base already has.
func mergeOptions(base, extra []Option) []Option {
	out := make([]Option, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]Option{base, extra} {
		for _, o := range list {
			if seen[o.Value] {
				continue
			}
			seen[o.Value] = true
			out = append(out, o)
		}
	}
	return out
}
