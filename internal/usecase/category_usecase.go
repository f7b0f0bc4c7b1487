package usecase

import (
	"context"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// CategoryUseCase handles the category boundary the ledger reads from.
type CategoryUseCase struct {
	categoryRepo CategoryRepository
	idGen        IDGenerator
}

// NewCategoryUseCase creates a new CategoryUseCase.
func NewCategoryUseCase(categoryRepo CategoryRepository, idGen IDGenerator) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: categoryRepo,
		idGen:        idGen,
	}
}

// CreateCategoryInput represents input for creating a category.
type CreateCategoryInput struct {
	OwnerID string
	Name    string
	Type    domain.TransactionType
}

// CreateCategory creates an income or expense category.
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := domain.ValidateName("name", input.Name); err != nil {
		return nil, err
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, "type", "must be income or expense")
	}

	category := &domain.Category{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Name:      input.Name,
		Type:      input.Type,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// ListCategories lists the owner's categories.
func (uc *CategoryUseCase) ListCategories(ctx context.Context, ownerID string) ([]*domain.Category, error) {
	return uc.categoryRepo.ListByOwner(ctx, ownerID)
}
