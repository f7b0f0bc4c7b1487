package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	GetLoan(ctx context.Context, ownerID, loanID string) (*domain.Loan, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error)
	DeleteLoan(ctx context.Context, ownerID, loanID string) (*domain.Loan, error)
	CreateLoanPayment(ctx context.Context, input usecase.CreateLoanPaymentInput) (*domain.LoanPayment, error)
	ListPayments(ctx context.Context, ownerID, loanID string) ([]*domain.LoanPayment, error)
	GetLoanStats(ctx context.Context, ownerID string) (*domain.LoanStats, error)
}

// LoanHandler handles loan and repayment requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Create opens a loan and posts its disbursement.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.loanUC.CreateLoan(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Get retrieves a loan.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists loans. Query: kind, status, limit, offset.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter := domain.LoanFilter{
		OwnerID: owner,
		Limit:   parseIntQuery(r, "limit", 50),
		Offset:  parseIntQuery(r, "offset", 0),
	}
	if k := optionalQuery(r, "kind"); k != nil {
		kind := domain.LoanKind(*k)
		filter.Kind = &kind
	}
	if s := optionalQuery(r, "status"); s != nil {
		status := domain.LoanStatus(*s)
		filter.Status = &status
	}

	loans, err := h.loanUC.ListLoans(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"loans": dto.LoansFromDomain(loans)})
}

// Delete removes a loan and reverses its disbursement.
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	loan, err := h.loanUC.DeleteLoan(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// CreatePayment records a repayment against a loan.
func (h *LoanHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateLoanPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.loanUC.CreateLoanPayment(r.Context(), req.ToUseCaseInput(owner, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanPaymentFromDomain(payment))
}

// ListPayments lists a loan's payments oldest first.
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	payments, err := h.loanUC.ListPayments(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"payments": dto.LoanPaymentsFromDomain(payments)})
}

// Stats summarizes open loans per kind.
func (h *LoanHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	stats, err := h.loanUC.GetLoanStats(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
