package sheets

import (
	"testing"
	"time"

	"kivo/internal/core"
)

func TestParseAccountRow(t *testing.T) {
	tests := []struct {
		name    string
		cells   []string
		want    core.Account
		wantErr bool
	}{
		{
			name:  "full row",
			cells: []string{"acc-1", "Conta Corrente", "checking", "#6366f1", "🏦", "1500.00", "2025-01-10"},
			want: core.Account{
				ID:             "acc-1",
				Name:           "Conta Corrente",
				Type:           core.AccountChecking,
				Balance:        core.Money{Cents: 150000},
				Color:          "#6366f1",
				Icon:           "🏦",
				InitialBalance: core.Money{Cents: 150000},
				CreatedAt:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "comma decimal and zero balance",
			cells: []string{"acc-2", "Carteira", "wallet", "", "", "0,00", "2025-01-10"},
			want: core.Account{
				ID:        "acc-2",
				Name:      "Carteira",
				Type:      core.AccountWallet,
				CreatedAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "missing name",
			cells:   []string{"acc-3", "", "checking", "", "", "10.00", "2025-01-10"},
			wantErr: true,
		},
		{
			name:    "unknown account type",
			cells:   []string{"acc-4", "Cofre", "vault", "", "", "10.00", "2025-01-10"},
			wantErr: true,
		},
		{
			name:    "bad date",
			cells:   []string{"acc-5", "Conta", "checking", "", "", "10.00", "january"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAccountRow(tt.cells)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseAccountRow() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAccountRow() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseAccountRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTransactionRow(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("domestic expense", func(t *testing.T) {
		got, err := parseTransactionRow([]string{
			"t-1", "Supermercado", "234.50", "expense", "food", "acc-1", "2025-03-14", "2025-03-14",
		})
		if err != nil {
			t.Fatalf("parseTransactionRow() error = %v", err)
		}
		if got.Amount.Cents != 23450 || got.Type != core.Expense || !got.Date.Equal(date) {
			t.Fatalf("unexpected transaction: %+v", got)
		}
		if got.ForeignCurrency {
			t.Fatal("domestic row parsed as foreign")
		}
	})

	t.Run("foreign purchase", func(t *testing.T) {
		got, err := parseTransactionRow([]string{
			"t-2", "Compra online", "495.00", "expense", "shopping", "acc-1",
			"2025-03-14", "2025-03-14", "true", "100.00", "usd", "495.00",
		})
		if err != nil {
			t.Fatalf("parseTransactionRow() error = %v", err)
		}
		if !got.ForeignCurrency {
			t.Fatal("foreign flag not parsed")
		}
		if got.OriginalAmount.Cents != 10000 || got.OriginalCurrency != core.CurrencyUSD {
			t.Fatalf("original fields = %d %s", got.OriginalAmount.Cents, got.OriginalCurrency)
		}
		if got.ConvertedAmount.Cents != 49500 {
			t.Fatalf("ConvertedAmount = %d, want 49500", got.ConvertedAmount.Cents)
		}
		if got.EffectiveAmount().Cents != 49500 {
			t.Fatalf("EffectiveAmount = %d, want 49500", got.EffectiveAmount().Cents)
		}
	})

	t.Run("missing created at falls back to date", func(t *testing.T) {
		got, err := parseTransactionRow([]string{
			"t-3", "Uber", "28.90", "expense", "transport", "acc-1", "2025-03-14",
		})
		if err != nil {
			t.Fatalf("parseTransactionRow() error = %v", err)
		}
		if !got.CreatedAt.Equal(got.Date) {
			t.Fatalf("CreatedAt = %v, want the row date %v", got.CreatedAt, got.Date)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := parseTransactionRow([]string{
			"t-4", "Uber", "28.90", "transfer", "transport", "acc-1", "2025-03-14",
		}); err == nil {
			t.Fatal("expected error for unknown type")
		}
	})
}

func TestSortTransactions(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	txns := []core.Transaction{
		{ID: "a", Date: day(-2), CreatedAt: day(-2)},
		{ID: "b", Date: day(0), CreatedAt: day(0)},
		{ID: "c", Date: day(-1), CreatedAt: day(-1)},
		{ID: "d", Date: day(0), CreatedAt: day(0).Add(time.Hour)},
	}

	sortTransactions(txns)

	want := []string{"d", "b", "c", "a"}
	for i, id := range want {
		if txns[i].ID != id {
			t.Fatalf("position %d = %q, want %q", i, txns[i].ID, id)
		}
	}
}
