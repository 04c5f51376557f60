// Package browse pages through the brand → product type → style → variant
// drill-down with keyset cursors. Sort keys are never pricing columns, so
// concurrent bulk mutations cannot move a row between pages.
package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/variants"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// DefaultVariantSort is the variant-level sort column when none is requested.
const DefaultVariantSort = "sku_code"

var variantSortColumns = map[string]struct{}{
	"sku_code":     {},
	"style_code":   {},
	"brand":        {},
	"product_type": {},
	"name":         {},
}

var levelColumns = map[enums.BrowseLevel]string{
	enums.BrowseLevelBrand:       "brand",
	enums.BrowseLevelProductType: "product_type",
	enums.BrowseLevelStyle:       "style_code",
}

// Filters narrow every level. Nil fields are ignored.
type Filters struct {
	Brand       *string
	ProductType *string
	StyleCode   *string
	HasOffer    *bool
}

// Query is one page request.
type Query struct {
	Level     enums.BrowseLevel
	Filters   Filters
	Cursor    string
	Limit     int
	Sort      string
	Direction enums.SortDirection
}

// AggregateRow summarizes the variants sharing one brand, type or style.
// Statistics are computed at read time and may be stale by render.
type AggregateRow struct {
	Key              string  `json:"key"`
	VariantCount     int64   `json:"variant_count"`
	StyleCount       int64   `json:"style_count"`
	OfferCount       int64   `json:"offer_count"`
	AvgMarginPercent *string `json:"avg_margin_percent"`
	MinFinalPrice    *string `json:"min_final_price"`
	MaxFinalPrice    *string `json:"max_final_price"`
}

// Page is one cursor page. Rows is filled for aggregate levels and Variants
// for the variant level.
type Page struct {
	Level      enums.BrowseLevel     `json:"level"`
	Rows       []AggregateRow        `json:"rows,omitempty"`
	Variants   []variants.VariantDTO `json:"variants,omitempty"`
	NextCursor string                `json:"next_cursor,omitempty"`
	HasMore    bool                  `json:"has_more"`
	Total      int64                 `json:"total"`
}

// Browser runs the page and count queries.
type Browser struct {
	db *gorm.DB
}

func NewBrowser(db *gorm.DB) *Browser {
	return &Browser{db: db}
}

// ListAggregates returns one page of the requested level plus the total
// number of keys matching the filters.
func (b *Browser) ListAggregates(ctx context.Context, q Query) (*Page, error) {
	if q.Direction == "" {
		q.Direction = enums.SortAsc
	}
	if q.Direction != enums.SortAsc && q.Direction != enums.SortDesc {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort direction").
			WithDetails(map[string]any{"direction": string(q.Direction)})
	}
	q.Filters = q.Filters.normalized()

	switch q.Level {
	case enums.BrowseLevelBrand, enums.BrowseLevelProductType, enums.BrowseLevelStyle:
		return b.listGroups(ctx, q)
	case enums.BrowseLevelVariant:
		return b.listVariants(ctx, q)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid browse level").
			WithDetails(map[string]any{"level": string(q.Level)})
	}
}

type groupRow struct {
	GroupKey         string
	VariantCount     int64
	StyleCount       int64
	OfferCount       int64
	AvgMarginPercent decimal.NullDecimal
	MinFinalPrice    decimal.NullDecimal
	MaxFinalPrice    decimal.NullDecimal
}

const groupSelect = "%[1]s AS group_key, COUNT(*) AS variant_count, COUNT(DISTINCT style_code) AS style_count, " +
	"SUM(CASE WHEN is_offer_active THEN 1 ELSE 0 END) AS offer_count, AVG(CASE WHEN cost IS NOT NULL THEN margin_percent END) AS avg_margin_percent, " +
	"MIN(final_price) AS min_final_price, MAX(final_price) AS max_final_price"

func (b *Browser) listGroups(ctx context.Context, q Query) (*Page, error) {
	if strings.TrimSpace(q.Sort) != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort is only supported at the variant level")
	}
	after, err := pagination.ParseGroupCursor(q.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	column := levelColumns[q.Level]
	filter := q.Filters.scope()

	qb := b.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Scopes(filter).
		Select(fmt.Sprintf(groupSelect, column))
	if after != nil {
		qb = qb.Where(fmt.Sprintf("%s %s ?", column, comparator(q.Direction)), *after)
	}

	var rows []groupRow
	err = qb.Group(column).
		Order(fmt.Sprintf("%s %s", column, orderKeyword(q.Direction))).
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list aggregates")
	}

	var total int64
	err = b.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Scopes(filter).
		Select(fmt.Sprintf("COUNT(DISTINCT %s)", column)).
		Scan(&total).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count aggregates")
	}

	page, more := pagination.Trim(rows, q.Limit)
	out := &Page{Level: q.Level, Rows: make([]AggregateRow, 0, len(page)), HasMore: more, Total: total}
	for _, row := range page {
		out.Rows = append(out.Rows, AggregateRow{
			Key:              row.GroupKey,
			VariantCount:     row.VariantCount,
			StyleCount:       row.StyleCount,
			OfferCount:       row.OfferCount,
			AvgMarginPercent: rounded(row.AvgMarginPercent),
			MinFinalPrice:    rounded(row.MinFinalPrice),
			MaxFinalPrice:    rounded(row.MaxFinalPrice),
		})
	}
	if more {
		out.NextCursor = pagination.EncodeGroupCursor(page[len(page)-1].GroupKey)
	}
	return out, nil
}

func (b *Browser) listVariants(ctx context.Context, q Query) (*Page, error) {
	sortColumn := strings.TrimSpace(q.Sort)
	if sortColumn == "" {
		sortColumn = DefaultVariantSort
	}
	if _, ok := variantSortColumns[sortColumn]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort column").
			WithDetails(map[string]any{"sort": sortColumn})
	}
	cursor, err := pagination.ParseKeyCursor(q.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filter := q.Filters.scope()
	cmp := comparator(q.Direction)
	dir := orderKeyword(q.Direction)

	qb := b.db.WithContext(ctx).Model(&models.ProductVariant{}).Scopes(filter)
	if cursor != nil {
		if sortColumn == DefaultVariantSort {
			qb = qb.Where(fmt.Sprintf("sku_code %s ?", cmp), cursor.SKU)
		} else {
			qb = qb.Where(
				fmt.Sprintf("(%[1]s %[2]s ?) OR (%[1]s = ? AND sku_code %[2]s ?)", sortColumn, cmp),
				cursor.Value, cursor.Value, cursor.SKU,
			)
		}
	}
	if sortColumn != DefaultVariantSort {
		qb = qb.Order(fmt.Sprintf("%s %s", sortColumn, dir))
	}

	var rows []models.ProductVariant
	err = qb.Order(fmt.Sprintf("sku_code %s", dir)).
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variants")
	}

	var total int64
	if err := b.db.WithContext(ctx).Model(&models.ProductVariant{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count variants")
	}

	page, more := pagination.Trim(rows, q.Limit)
	out := &Page{Level: q.Level, Variants: make([]variants.VariantDTO, 0, len(page)), HasMore: more, Total: total}
	for _, row := range page {
		out.Variants = append(out.Variants, variants.NewVariantDTO(row))
	}
	if more {
		last := page[len(page)-1]
		out.NextCursor = pagination.EncodeKeyCursor(pagination.KeyCursor{Value: sortValue(last, sortColumn), SKU: last.SKUCode})
	}
	return out, nil
}

// scope is shared by page and count queries; it never includes the cursor.
func (f Filters) scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Brand != nil {
			db = db.Where("brand = ?", *f.Brand)
		}
		if f.ProductType != nil {
			db = db.Where("product_type = ?", *f.ProductType)
		}
		if f.StyleCode != nil {
			db = db.Where("style_code = ?", *f.StyleCode)
		}
		if f.HasOffer != nil {
			db = db.Where("is_offer_active = ?", *f.HasOffer)
		}
		return db
	}
}

func (f Filters) normalized() Filters {
	return Filters{
		Brand:       trimmed(f.Brand),
		ProductType: trimmed(f.ProductType),
		StyleCode:   trimmed(f.StyleCode),
		HasOffer:    f.HasOffer,
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func comparator(dir enums.SortDirection) string {
	if dir == enums.SortDesc {
		return "<"
	}
	return ">"
}

func orderKeyword(dir enums.SortDirection) string {
	if dir == enums.SortDesc {
		return "DESC"
	}
	return "ASC"
}

func sortValue(v models.ProductVariant, column string) string {
	switch column {
	case "style_code":
		return v.StyleCode
	case "brand":
		return v.Brand
	case "product_type":
		return v.ProductType
	case "name":
		return v.Name
	default:
		return v.SKUCode
	}
}

func rounded(value decimal.NullDecimal) *string {
	if !value.Valid {
		return nil
	}
	s := value.Decimal.Round(2).StringFixed(2)
	return &s
}
