package core

import "time"

// FinancialSummary is the derived dashboard state. It is recomputed from the
// canonical transaction set after every mutation, never patched in place.
type FinancialSummary struct {
	TotalBalance Money `json:"totalBalance"`
	TodayIncome  Money `json:"todayIncome"`
	TodayExpense Money `json:"todayExpense"`
	MonthIncome  Money `json:"monthIncome"`
	MonthExpense Money `json:"monthExpense"`
}

// Summarize derives the summary from a transaction set, optionally scoped to
// one account (empty accountID means all accounts). The today and month
// buckets are evaluated against now's calendar day and month in now's
// location, so results are only stable under a fixed clock.
func Summarize(txns []Transaction, accountID string, now time.Time) FinancialSummary {
	nowYear, nowMonth, nowDay := now.Date()

	var s FinancialSummary
	for _, t := range txns {
		if accountID != "" && t.AccountID != accountID {
			continue
		}
		cents := t.EffectiveAmount().Cents
		y, m, d := t.Date.In(now.Location()).Date()
		sameMonth := y == nowYear && m == nowMonth
		sameDay := sameMonth && d == nowDay

		if t.Type == Income {
			s.TotalBalance.Cents += cents
			if sameDay {
				s.TodayIncome.Cents += cents
			}
			if sameMonth {
				s.MonthIncome.Cents += cents
			}
		} else {
			s.TotalBalance.Cents -= cents
			if sameDay {
				s.TodayExpense.Cents += cents
			}
			if sameMonth {
				s.MonthExpense.Cents += cents
			}
		}
	}
	return s
}

// RecomputeBalances returns a copy of accounts with every balance rebuilt
// from scratch: initial balance plus the signed sum of effective amounts of
// the transactions referencing the account. Transactions pointing at an
// unknown account contribute to no balance. Idempotent for a given
// transaction set.
func RecomputeBalances(accounts []Account, txns []Transaction) []Account {
	sums := make(map[string]int64, len(accounts))
	for _, t := range txns {
		sums[t.AccountID] += t.SignedCents()
	}

	out := make([]Account, len(accounts))
	for i, a := range accounts {
		a.Balance = Money{Cents: a.InitialBalance.Cents + sums[a.ID]}
		out[i] = a
	}
	return out
}
