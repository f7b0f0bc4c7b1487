package postgres

import (
	"math"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

func moneyToNumeric(m domain.Money) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   big.NewInt(m.Cents()),
		Exp:   -domain.MoneyScale,
		Valid: true,
	}
}

func numericToMoney(n pgtype.Numeric) domain.Money {
	if !n.Valid || n.Int == nil {
		return domain.ZeroMoney
	}

	// every money column and aggregate is selected as NUMERIC(18, 2)
	m, err := domain.NewMoney(decimal.NewFromBigInt(n.Int, n.Exp))
	if err != nil {
		panic(err)
	}
	return m
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t,
		Valid: true,
	}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func timestamptzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// pageLimit maps a non-positive limit to an unbounded page.
func pageLimit(limit int) int32 {
	if limit <= 0 || limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(limit)
}

// queriesFor returns the queries bound to the unit of work behind tx.
func queriesFor(tx usecase.Transaction) *generated.Queries {
	return tx.(*Tx).Queries()
}
