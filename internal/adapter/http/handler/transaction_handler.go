package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
}

// TransactionHandler handles income, expense and transfer requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Create posts a transaction with its entries.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.transactionUC.CreateTransaction(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction with its entries.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	txn, err := h.transactionUC.GetTransaction(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List lists transactions newest first.
// Query: type, from, to, category_id, wallet_id, exclude_loans, limit, offset.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	input := usecase.ListTransactionsInput{
		OwnerID:            owner,
		From:               from,
		To:                 to,
		CategoryID:         optionalQuery(r, "category_id"),
		WalletID:           optionalQuery(r, "wallet_id"),
		ExcludeLoanRelated: parseBoolQuery(r, "exclude_loans"),
		Limit:              parseIntQuery(r, "limit", 50),
		Offset:             parseIntQuery(r, "offset", 0),
	}
	if t := optionalQuery(r, "type"); t != nil {
		txType := domain.TransactionType(*t)
		input.Type = &txType
	}

	page, err := h.transactionUC.ListTransactions(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromUseCase(page))
}

// Delete soft-deletes a transaction and reverts its balance effect.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	txn, err := h.transactionUC.DeleteTransaction(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}
