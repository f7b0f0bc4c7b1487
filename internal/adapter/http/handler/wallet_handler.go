package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	GetWallet(ctx context.Context, ownerID, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Wallet, error)
	ArchiveWallet(ctx context.Context, ownerID, id string) (*domain.Wallet, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Create creates a new wallet.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wallet, err := h.walletUC.CreateWallet(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUC.GetWallet(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// List lists the owner's wallets; archived ones only with include_archived=true.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	wallets, err := h.walletUC.ListWallets(r.Context(), owner, parseBoolQuery(r, "include_archived"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"wallets": dto.WalletsFromDomain(wallets)})
}

// Archive hides a wallet from new transactions.
func (h *WalletHandler) Archive(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUC.ArchiveWallet(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}
