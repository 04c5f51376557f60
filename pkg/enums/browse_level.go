package enums

import "fmt"

// BrowseLevel is one step of the brand → product type → style → variant drill-down.
type BrowseLevel string

const (
	BrowseLevelBrand       BrowseLevel = "brand"
	BrowseLevelProductType BrowseLevel = "product_type"
	BrowseLevelStyle       BrowseLevel = "style"
	BrowseLevelVariant     BrowseLevel = "variant"
)

var validBrowseLevels = []BrowseLevel{
	BrowseLevelBrand,
	BrowseLevelProductType,
	BrowseLevelStyle,
	BrowseLevelVariant,
}

// IsValid reports whether the level is recognized.
func (l BrowseLevel) IsValid() bool {
	for _, candidate := range validBrowseLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseBrowseLevel converts a raw string into a BrowseLevel.
func ParseBrowseLevel(value string) (BrowseLevel, error) {
	for _, candidate := range validBrowseLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid browse level %q", value)
}

// SortDirection orders cursor pages.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts asc/desc, defaulting to asc when empty.
func ParseSortDirection(value string) (SortDirection, error) {
	switch SortDirection(value) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", value)
}
