package handler

import (
	"context"
	"net/http"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// CategoryService defines the behavior needed by CategoryHandler.
type CategoryService interface {
	CreateCategory(ctx context.Context, input usecase.CreateCategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]*domain.Category, error)
}

// CategoryHandler handles category requests.
type CategoryHandler struct {
	categoryUC CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryUC CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryUC: categoryUC}
}

// Create creates an income or expense category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryUC.CreateCategory(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CategoryFromDomain(category))
}

// List lists the owner's categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	categories, err := h.categoryUC.ListCategories(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": dto.CategoriesFromDomain(categories)})
}
