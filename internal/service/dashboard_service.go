package service

import (
	"context"

	"go-catalog-ws/internal/repository"
)

// DefaultLowStock is the stock level under which a product counts as running low.
const DefaultLowStock = 10

type DashboardService interface {
	GetCatalogStats(ctx context.Context, lowStock int) (*repository.CatalogStats, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
}

func NewDashboardService(productRepo repository.ProductRepository) DashboardService {
	return &dashboardService{productRepo: productRepo}
}

func (s *dashboardService) GetCatalogStats(ctx context.Context, lowStock int) (*repository.CatalogStats, error) {
	if lowStock <= 0 {
		lowStock = DefaultLowStock
	}
	return s.productRepo.Stats(ctx, lowStock)
}
