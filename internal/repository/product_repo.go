package repository

import (
	"context"
	"time"

	"go-catalog-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// FindByID also returns soft deleted rows; callers check IsDeleted.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindActiveByCode(ctx context.Context, code string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Collapse(ctx context.Context, id uuid.UUID, deletedBy string) error
	Count(ctx context.Context, filter model.ProductFilter) (int64, error)
	List(ctx context.Context, filter model.ProductFilter, sort model.SortOrder, offset, limit int) ([]model.Product, error)
	// Transaction runs fn against a repository bound to a single database transaction.
	Transaction(ctx context.Context, fn func(repo ProductRepository) error) error
	Stats(ctx context.Context, lowStock int) (*CatalogStats, error)
}

// CatalogStats untuk overview dashboard
type CatalogStats struct {
	ActiveProducts  int64       `json:"active_products"`
	DeletedProducts int64       `json:"deleted_products"`
	LowStockCount   int64       `json:"low_stock_count"`
	TotalStock      int64       `json:"total_stock"`
	TotalValuation  float64     `json:"total_valuation"`
	ByType          []TypeCount `json:"by_type"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	var last int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Product{}).
		Select("COALESCE(MAX(position), 0)").
		Scan(&last).Error
	if err != nil {
		return err
	}
	product.Position = last + 1
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Unscoped().First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindActiveByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Collapse soft deletes the row and blanks every descriptive column, keeping only the id.
func (r *productRepo) Collapse(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"code":        "",
			"title":       "",
			"description": "",
			"price":       0,
			"thumbnail":   "",
			"thumbnails":  datatypes.JSONSlice[string]{},
			"stock":       0,
			"type":        "",
			"deleted_at":  time.Now(),
			"deleted_by":  deletedBy,
			"updated_by":  deletedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) scoped(ctx context.Context, filter model.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	return q
}

func (r *productRepo) Count(ctx context.Context, filter model.ProductFilter) (int64, error) {
	var total int64
	err := r.scoped(ctx, filter).Count(&total).Error
	return total, err
}

func (r *productRepo) List(ctx context.Context, filter model.ProductFilter, sort model.SortOrder, offset, limit int) ([]model.Product, error) {
	q := r.scoped(ctx, filter)
	switch sort {
	case model.SortAsc:
		q = q.Order("price ASC")
	case model.SortDesc:
		q = q.Order("price DESC")
	}
	q = q.Order("position ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}

	products := []model.Product{}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) Transaction(ctx context.Context, fn func(repo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&productRepo{db: tx})
	})
}

func (r *productRepo) Stats(ctx context.Context, lowStock int) (*CatalogStats, error) {
	stats := CatalogStats{ByType: []TypeCount{}}
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Unscoped().Model(&model.Product{}).Where("deleted_at IS NOT NULL").Count(&stats.DeletedProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < ?", lowStock).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Stock and valuation over active rows only
	var totals struct {
		Stock     int64
		Valuation float64
	}
	err := db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock), 0) as stock, COALESCE(SUM(stock * price), 0) as valuation").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalStock = totals.Stock
	stats.TotalValuation = totals.Valuation

	err = db.Model(&model.Product{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Order("count DESC, type ASC").
		Scan(&stats.ByType).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Migrate creates or updates the catalog schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Product{}, &model.User{})
}
