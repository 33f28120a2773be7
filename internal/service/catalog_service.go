package service

import (
	"context"
	"errors"
	"sync"

	"go-catalog-ws/internal/model"
	"go-catalog-ws/internal/repository"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService owns the product collection: code uniqueness, soft deletion,
// partial updates and paginated listing. It performs no identity checks; actor
// only fills the audit columns.
type CatalogService interface {
	GetAll(ctx context.Context, filter model.ProductFilter, pagination model.Pagination) (*model.ProductPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Add(ctx context.Context, req *model.Product, actor string) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch *model.Product, actor string) (*model.Product, error)
	// Delete returns the record as it was before being collapsed.
	Delete(ctx context.Context, id uuid.UUID, actor string) (*model.Product, error)
}

type catalogService struct {
	repo repository.ProductRepository

	// mu serializes every read-validate-write cycle.
	mu sync.Mutex
}

func NewCatalogService(repo repository.ProductRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) GetAll(ctx context.Context, filter model.ProductFilter, p model.Pagination) (*model.ProductPage, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit <= 0 || int64(limit) > total {
		limit = int(total)
	}

	totalPages := 1
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	// Pages past the end are empty; offset is only computed in range so it cannot overflow.
	docs := []model.Product{}
	pagingCounter := int(total) + 1
	if page <= totalPages {
		offset := (page - 1) * limit
		pagingCounter = offset + 1
		if limit > 0 {
			docs, err = s.repo.List(ctx, filter, p.Sort, offset, limit)
			if err != nil {
				return nil, err
			}
		}
	}

	result := &model.ProductPage{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         limit,
		Page:          page,
		TotalPages:    totalPages,
		PagingCounter: pagingCounter,
		HasPrevPage:   page > 1,
		HasNextPage:   page < totalPages,
	}
	if result.HasPrevPage {
		prev := page - 1
		result.PrevPage = &prev
	}
	if result.HasNextPage {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if product.IsDeleted() {
		return nil, ErrGone
	}
	return product, nil
}

func (s *catalogService) Add(ctx context.Context, req *model.Product, actor string) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Thumbnail:   req.Thumbnail,
		Thumbnails:  req.Thumbnails,
		Stock:       req.Stock,
		Type:        req.Type,
	}
	product.CreatedBy = actor
	product.UpdatedBy = actor

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Transaction(ctx, func(repo repository.ProductRepository) error {
		if err := ensureCodeFree(ctx, repo, product.Code, uuid.Nil); err != nil {
			return err
		}
		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, conflict(err)
	}

	log.Debugf("product %s created with code %q by %s", product.ID, product.Code, actor)
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, patch *model.Product, actor string) (*model.Product, error) {
	if patch == nil {
		patch = &model.Product{}
	}
	if err := validate(&patchBounds{Price: patch.Price, Stock: patch.Stock}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *model.Product
	err := s.repo.Transaction(ctx, func(repo repository.ProductRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if existing.IsDeleted() {
			return ErrGone
		}
		if patch.Code != "" && patch.Code != existing.Code {
			if err := ensureCodeFree(ctx, repo, patch.Code, existing.ID); err != nil {
				return err
			}
		}

		if !applyPatch(existing, patch) {
			updated = existing
			return nil
		}
		existing.UpdatedBy = actor
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, conflict(err)
	}
	return updated, nil
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID, actor string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshot model.Product
	err := s.repo.Transaction(ctx, func(repo repository.ProductRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if existing.IsDeleted() {
			return ErrGone
		}
		snapshot = *existing
		return repo.Collapse(ctx, id, actor)
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("product %s (%q) deleted by %s", snapshot.ID, snapshot.Code, actor)
	return &snapshot, nil
}

// patchBounds checks the numeric fields of a patch; zero means "not provided".
type patchBounds struct {
	Price float64 `json:"price" validate:"omitempty,gte=0"`
	Stock int     `json:"stock" validate:"omitempty,gte=0"`
}

// applyPatch copies every non-zero field of patch onto p and reports whether anything changed.
func applyPatch(p, patch *model.Product) bool {
	changed := false
	if patch.Code != "" && patch.Code != p.Code {
		p.Code = patch.Code
		changed = true
	}
	if patch.Title != "" && patch.Title != p.Title {
		p.Title = patch.Title
		changed = true
	}
	if patch.Description != "" && patch.Description != p.Description {
		p.Description = patch.Description
		changed = true
	}
	if patch.Price != 0 && patch.Price != p.Price {
		p.Price = patch.Price
		changed = true
	}
	if patch.Thumbnail != "" && patch.Thumbnail != p.Thumbnail {
		p.Thumbnail = patch.Thumbnail
		changed = true
	}
	if len(patch.Thumbnails) > 0 {
		p.Thumbnails = patch.Thumbnails
		changed = true
	}
	if patch.Stock != 0 && patch.Stock != p.Stock {
		p.Stock = patch.Stock
		changed = true
	}
	if patch.Type != "" && patch.Type != p.Type {
		p.Type = patch.Type
		changed = true
	}
	return changed
}

// ensureCodeFree fails with ErrConflict when an active product other than self already uses code.
func ensureCodeFree(ctx context.Context, repo repository.ProductRepository, code string, self uuid.UUID) error {
	other, err := repo.FindActiveByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != self {
		return ErrConflict
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// conflict maps the unique index violation raised by the driver to ErrConflict.
func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}
