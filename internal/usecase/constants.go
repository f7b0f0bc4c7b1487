package usecase

import "time"

// DefaultTransactionTimeout caps a unit of work once it has begun so row
// locks on wallets and loans are never held indefinitely.
const DefaultTransactionTimeout = 10 * time.Second

// DefaultLoanCategoryName is the category looked up when a loan posts its
// principal or a payment.
const DefaultLoanCategoryName = "Loans"

// DefaultStatsCacheTTL applies when WithStatsCache is given a non-positive ttl.
const DefaultStatsCacheTTL = 5 * time.Minute
