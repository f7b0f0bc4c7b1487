package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
)

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	queries *generated.Queries
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db generated.DBTX) *CategoryRepository {
	return &CategoryRepository{queries: generated.New(db)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	err := r.queries.CreateCategory(ctx, generated.CreateCategoryParams{
		ID:        category.ID,
		OwnerID:   category.OwnerID,
		Name:      category.Name,
		Type:      string(category.Type),
		CreatedAt: timeToPgTimestamptz(category.CreatedAt),
	})

	return mapError("create category", err)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	row, err := r.queries.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.CategoryInvalidError{CategoryID: id, Reason: "not found"}
		}

		return nil, mapError("get category", err)
	}

	return rowToCategory(row), nil
}

// FindByName matches names case-insensitively within the owner and type.
func (r *CategoryRepository) FindByName(ctx context.Context, ownerID string, categoryType domain.TransactionType, name string) (*domain.Category, error) {
	row, err := r.queries.FindCategoryByName(ctx, generated.FindCategoryByNameParams{
		OwnerID: ownerID,
		Type:    string(categoryType),
		Name:    name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.CategoryInvalidError{Reason: "no " + string(categoryType) + " category named " + name}
		}

		return nil, mapError("find category", err)
	}

	return rowToCategory(row), nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Category, error) {
	rows, err := r.queries.ListCategoriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapError("list categories", err)
	}

	categories := make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, rowToCategory(row))
	}

	return categories, nil
}

func rowToCategory(row generated.Category) *domain.Category {
	return &domain.Category{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		Type:      domain.TransactionType(row.Type),
		CreatedAt: row.CreatedAt.Time,
	}
}
