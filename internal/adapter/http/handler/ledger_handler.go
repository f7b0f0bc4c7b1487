package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// LedgerService defines the reconciliation behavior needed by LedgerHandler.
type LedgerService interface {
	ReconcileWallet(ctx context.Context, ownerID, walletID string) (*usecase.ReconciliationResult, error)
	CheckConsistency(ctx context.Context, ownerID string) (*domain.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// ReconcileWallet compares a wallet's stored balance with its entries.
func (h *LedgerHandler) ReconcileWallet(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.ledgerUC.ReconcileWallet(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// CheckConsistency checks every wallet and loan of the owner. An inconsistent
// ledger is reported with 409.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	report, err := h.ledgerUC.CheckConsistency(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}
	writeJSON(w, status, report)
}
