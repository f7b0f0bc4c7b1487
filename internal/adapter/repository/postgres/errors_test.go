package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantKind       domain.ErrorKind
		wantConstraint string
	}{
		{
			name:           "unique violation",
			err:            &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "transactions_loan_id_key"},
			wantKind:       domain.KindConflict,
			wantConstraint: "transactions_loan_id_key",
		},
		{
			name:           "check violation",
			err:            &pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: "wallets_current_balance_check"},
			wantKind:       domain.KindConflict,
			wantConstraint: "wallets_current_balance_check",
		},
		{
			name:           "deadlock without constraint",
			err:            &pgconn.PgError{Code: pgErrDeadlock},
			wantKind:       domain.KindConflict,
			wantConstraint: pgErrDeadlock,
		},
		{
			name:     "syntax error",
			err:      &pgconn.PgError{Code: "42601"},
			wantKind: domain.KindStorage,
		},
		{
			name:     "network error",
			err:      errors.New("connection reset by peer"),
			wantKind: domain.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("op", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.ErrorIs(t, err, tt.err)

			if tt.wantConstraint != "" {
				var conflict *domain.ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, tt.wantConstraint, conflict.Constraint)
			}
		})
	}
}

func TestMapErrorPassesThrough(t *testing.T) {
	assert.NoError(t, mapError("op", nil))

	notFound := &domain.LoanNotFoundError{LoanID: "loan-1"}
	assert.Same(t, notFound, mapError("op", notFound))
}
