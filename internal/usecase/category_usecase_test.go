package usecase_test

import (
	"context"
	"testing"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

func TestCategoryUseCase_CreateCategory(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	food, err := f.categories.CreateCategory(ctx, usecase.CreateCategoryInput{OwnerID: testOwner, Name: "Food", Type: domain.TransactionTypeExpense})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if food.ID == "" || food.Type != domain.TransactionTypeExpense {
		t.Fatalf("unexpected category: %+v", food)
	}

	// same name under the other type is a different category
	if _, err := f.categories.CreateCategory(ctx, usecase.CreateCategoryInput{OwnerID: testOwner, Name: "Food", Type: domain.TransactionTypeIncome}); err != nil {
		t.Fatalf("CreateCategory income: %v", err)
	}

	_, err = f.categories.CreateCategory(ctx, usecase.CreateCategoryInput{OwnerID: testOwner, Name: "Food", Type: domain.TransactionTypeExpense})
	assertErrorIs(t, err, domain.ErrConflict)

	_, err = f.categories.CreateCategory(ctx, usecase.CreateCategoryInput{OwnerID: testOwner, Name: "Moving", Type: domain.TransactionTypeTransfer})
	assertErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.categories.CreateCategory(ctx, usecase.CreateCategoryInput{OwnerID: testOwner, Name: "", Type: domain.TransactionTypeIncome})
	assertErrorIs(t, err, domain.ErrInvalidInput)

	categories, err := f.categories.ListCategories(ctx, testOwner)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(categories))
	}

	others, err := f.categories.ListCategories(ctx, otherOwner)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(others) != 0 {
		t.Fatalf("other owner sees %d categories", len(others))
	}
}

func TestCategoryUseCase_ForeignCategoryRejected(t *testing.T) {
	f := newLedgerFixture(t)
	f.wallet(t, "w-a", "100")
	f.store.SeedCategory(domain.Category{ID: "cat-foreign", OwnerID: otherOwner, Name: "Food", Type: domain.TransactionTypeExpense})

	_, err := f.transactions.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		OwnerID:    testOwner,
		Type:       domain.TransactionTypeExpense,
		WalletID:   "w-a",
		CategoryID: "cat-foreign",
		Amount:     domain.MustParseMoney("1"),
	})
	assertErrorIs(t, err, domain.ErrCategoryInvalid)
}
