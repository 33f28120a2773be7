package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go-catalog-ws/internal/model"
	"go-catalog-ws/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) ProductRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewProductRepo(db)
}

func product(code string, price float64) *model.Product {
	return &model.Product{Code: code, Title: "t", Description: "d", Price: price, Thumbnail: "x", Stock: 1, Type: "k"}
}

func TestCreateAssignsIncreasingPositions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a, b := product("A", 1), product("B", 1)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := repo.Collapse(ctx, a.ID, "admin"); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create b: %v", err)
	}
	// Deleted rows still reserve their slot.
	if a.Position != 1 || b.Position != 2 {
		t.Fatalf("unexpected positions a=%d b=%d", a.Position, b.Position)
	}
}

func TestCollapseBlanksRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p := product("C1", 9)
	p.Thumbnails = []string{"/img/1.png"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Collapse(ctx, p.ID, "admin"); err != nil {
		t.Fatalf("collapse: %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("deleted rows must stay reachable by id: %v", err)
	}
	if !got.IsDeleted() || got.DeletedBy != "admin" {
		t.Fatalf("row not marked deleted: %+v", got)
	}
	if got.Code != "" || got.Title != "" || got.Price != 0 || got.Stock != 0 || len(got.Thumbnails) != 0 {
		t.Fatalf("row not collapsed: %+v", got)
	}

	if _, err := repo.FindActiveByCode(ctx, "C1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("collapsed code should be free, got %v", err)
	}
	if err := repo.Collapse(ctx, p.ID, "admin"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second collapse should find nothing, got %v", err)
	}
	if err := repo.Collapse(ctx, uuid.New(), "admin"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("collapse of unknown id should find nothing, got %v", err)
	}
}

func TestUniqueIndexIgnoresDeletedRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := product("U", 1)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, product("U", 2)); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
	if err := repo.Collapse(ctx, first.ID, "admin"); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if err := repo.Create(ctx, product("U", 3)); err != nil {
		t.Fatalf("code should be reusable after delete: %v", err)
	}
}

func TestListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for i, price := range []float64{3, 1, 2} {
		p := product(string(rune('a'+i)), price)
		if i == 2 {
			p.Type = "other"
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	total, err := repo.Count(ctx, model.ProductFilter{Type: "k"})
	if err != nil || total != 2 {
		t.Fatalf("count: %d, %v", total, err)
	}

	asc, err := repo.List(ctx, model.ProductFilter{}, model.SortAsc, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(asc) != 3 || asc[0].Code != "b" || asc[2].Code != "a" {
		t.Fatalf("unexpected asc order: %v", asc)
	}

	paged, _ := repo.List(ctx, model.ProductFilter{}, model.SortNone, 1, 1)
	if len(paged) != 1 || paged[0].Code != "b" {
		t.Fatalf("unexpected page: %v", paged)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx ProductRepository) error {
		if err := tx.Create(ctx, product("T", 1)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if total, _ := repo.Count(ctx, model.ProductFilter{}); total != 0 {
		t.Fatalf("rolled back insert is visible: %d", total)
	}
}
