package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

type transactionServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	getFn    func(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	listFn   func(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
	deleteFn func(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
}

func (s *transactionServiceStub) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return s.createFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error) {
	return s.listFn(ctx, input)
}

func (s *transactionServiceStub) DeleteTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	return s.deleteFn(ctx, ownerID, id)
}

func TestTransactionHandler_Create(t *testing.T) {
	var captured usecase.CreateTransactionInput
	h := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{ID: "t-1", Type: input.Type, Amount: input.Amount}, nil
		},
	})

	rr := serve(t, http.MethodPost, "/transactions", "/transactions", h.Create, map[string]any{
		"type":        "expense",
		"wallet_id":   "w-1",
		"category_id": "c-1",
		"amount":      "40.10",
	})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, testOwner, captured.OwnerID)
	assert.Equal(t, domain.TransactionTypeExpense, captured.Type)
	assert.Equal(t, int64(4010), captured.Amount.Cents())

	resp := decode[dto.TransactionResponse](t, rr)
	assert.Equal(t, "t-1", resp.ID)
	assert.Equal(t, "40.10", resp.Amount.String())
}

func TestTransactionHandler_CreateMapsErrors(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			return nil, &domain.InsufficientBalanceError{
				WalletID: "w-1",
				Balance:  domain.MustParseMoney("10"),
				Amount:   domain.MustParseMoney("40"),
			}
		},
	})

	rr := serve(t, http.MethodPost, "/transactions", "/transactions", h.Create, map[string]any{"type": "expense", "amount": "40"})

	require.Equal(t, http.StatusConflict, rr.Code)
	resp := decode[dto.ErrorResponse](t, rr)
	assert.Equal(t, "INSUFFICIENT_BALANCE", resp.Error)
}

func TestTransactionHandler_CreateRejectsMalformedBody(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{})

	rr := serve(t, http.MethodPost, "/transactions", "/transactions", h.Create, map[string]any{"amount": "12.3.4"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransactionHandler_CreateRejectsOverflowingAmount(t *testing.T) {
	called := false
	h := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			called = true
			return &domain.Transaction{ID: "t-1", Amount: input.Amount}, nil
		},
	})

	for _, amount := range []any{"184467440737095517.16", json.Number("184467440737095517.16")} {
		rr := serve(t, http.MethodPost, "/transactions", "/transactions", h.Create, map[string]any{
			"type":        "expense",
			"wallet_id":   "w-1",
			"category_id": "cat-1",
			"amount":      amount,
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	}
	assert.False(t, called, "an amount that does not fit must never reach the ledger")
}

func TestTransactionHandler_ListParsesFilters(t *testing.T) {
	var captured usecase.ListTransactionsInput
	h := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error) {
			captured = input
			return &usecase.TransactionPage{Items: []*domain.Transaction{{ID: "t-1"}}, Total: 3, HasMore: true}, nil
		},
	})

	rr := serve(t, http.MethodGet, "/transactions",
		"/transactions?type=income&from=2025-01-01&to=2025-01-31&wallet_id=w-1&exclude_loans=true&limit=1&offset=2",
		h.List, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotNil(t, captured.Type)
	assert.Equal(t, domain.TransactionTypeIncome, *captured.Type)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *captured.From)
	assert.Equal(t, "w-1", *captured.WalletID)
	assert.Nil(t, captured.CategoryID)
	assert.True(t, captured.ExcludeLoanRelated)
	assert.Equal(t, 1, captured.Limit)
	assert.Equal(t, 2, captured.Offset)

	resp := decode[dto.ListTransactionsResponse](t, rr)
	assert.Equal(t, int64(3), resp.Total)
	assert.True(t, resp.HasMore)
}

func TestTransactionHandler_ListRejectsBadDate(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{})

	rr := serve(t, http.MethodGet, "/transactions", "/transactions?from=yesterday", h.List, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransactionHandler_GetAndDelete(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
			return nil, &domain.TransactionNotFoundError{TransactionID: id}
		},
		deleteFn: func(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
			return nil, &domain.LoanRelatedTransactionError{TransactionID: id}
		},
	})

	rr := serve(t, http.MethodGet, "/transactions/{id}", "/transactions/t-9", h.Get, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "t-9")

	rr = serve(t, http.MethodDelete, "/transactions/{id}", "/transactions/t-9", h.Delete, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "LOAN_RELATED_TRANSACTION", decode[dto.ErrorResponse](t, rr).Error)
}
