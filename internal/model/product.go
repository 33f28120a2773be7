package model

import "gorm.io/datatypes"

// DefaultThumbnail is served when a product is created from an upload without files.
const DefaultThumbnail = "/img/default-product.jpg"

// Product is a catalog entry. Code is unique among active (not soft deleted)
// products; the partial index leaves collapsed rows out of the constraint.
type Product struct {
	BaseModel
	Code        string                      `gorm:"type:varchar(64);uniqueIndex:idx_products_code_active,where:deleted_at IS NULL" json:"code" form:"code" validate:"required,notblank"`
	Title       string                      `gorm:"type:varchar(255)" json:"title" form:"title" validate:"required,notblank"`
	Description string                      `gorm:"type:text" json:"description" form:"description" validate:"required"`
	Price       float64                     `gorm:"default:0" json:"price" form:"price" validate:"required,gt=0"`
	Thumbnail   string                      `gorm:"type:varchar(512)" json:"thumbnail" form:"thumbnail" validate:"required"`
	Thumbnails  datatypes.JSONSlice[string] `json:"thumbnails,omitempty" form:"-"`
	Stock       int                         `gorm:"default:0" json:"stock" form:"stock" validate:"required,gte=0"`
	Type        string                      `gorm:"type:varchar(64);index" json:"type,omitempty" form:"type"`

	// Insertion order, used as the stable listing order.
	Position int64 `gorm:"index" json:"-" form:"-"`
}

// SortOrder orders listings by price.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc"/"desc" (and 1/-1); anything else means no sort.
func ParseSortOrder(s string) SortOrder {
	switch s {
	case "asc", "ASC", "1":
		return SortAsc
	case "desc", "DESC", "-1":
		return SortDesc
	}
	return SortNone
}

// ProductFilter narrows a listing. Empty fields match everything.
type ProductFilter struct {
	Type string
}

// Pagination selects one page of a listing. Limit <= 0 returns every match in one page.
type Pagination struct {
	Limit int
	Page  int
	Sort  SortOrder
}

// ProductPage is one page of a listing plus navigation metadata.
type ProductPage struct {
	Docs          []Product `json:"docs"`
	TotalDocs     int64     `json:"totalDocs"`
	Limit         int       `json:"limit"`
	Page          int       `json:"page"`
	TotalPages    int       `json:"totalPages"`
	PagingCounter int       `json:"pagingCounter"`
	HasPrevPage   bool      `json:"hasPrevPage"`
	HasNextPage   bool      `json:"hasNextPage"`
	PrevPage      *int      `json:"prevPage"`
	NextPage      *int      `json:"nextPage"`
}
