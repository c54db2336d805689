package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategorySalary        Category = "salary"
	CategoryInvestment    Category = "investment"
	CategoryOther         Category = "other"
)

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountWallet     AccountType = "wallet"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

type (
	TransactionType string

	Category string

	AccountType string

	// Account holds a user account. Balance is derived state: it always
	// equals InitialBalance plus the signed sum of the effective amounts of
	// the transactions referencing the account, and is only ever written by
	// RecomputeBalances.
	Account struct {
		ID             string      `json:"id"`
		Name           string      `json:"name"`
		Type           AccountType `json:"type"`
		Balance        Money       `json:"balance"`
		Color          string      `json:"color"`
		Icon           string      `json:"icon"`
		InitialBalance Money       `json:"initialBalance"`
		CreatedAt      time.Time   `json:"createdAt"`
	}

	// Transaction is a single money movement. Amount is always a positive
	// magnitude in the base currency; for foreign entries the original
	// magnitude and the converted one are carried alongside.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
		AccountID   string          `json:"accountId"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`

		ForeignCurrency  bool     `json:"isForeignCurrency"`
		OriginalAmount   Money    `json:"originalAmount"`
		OriginalCurrency Currency `json:"originalCurrency"`
		ConvertedAmount  Money    `json:"convertedAmount"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidCategory  = errors.New("invalid category for transaction type")
	ErrEmptyAccountID   = errors.New("empty account id")
	ErrInvalidDate      = errors.New("invalid date")
	ErrForeignFields    = errors.New("inconsistent foreign currency fields")
	ErrEmptyName        = errors.New("empty account name")
	ErrInvalidAccount   = errors.New("invalid account type")

	// ErrNotFound is returned by store operations targeting an id that does
	// not exist. Callers deleting concurrently must treat it as a possible
	// benign race, not a fatal error.
	ErrNotFound = errors.New("transaction not found")

	// ErrDataSource wraps failures loading accounts or transactions from the
	// configured data source.
	ErrDataSource = errors.New("data source failure")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (a AccountType) Valid() bool {
	switch a {
	case AccountChecking, AccountSavings, AccountWallet, AccountInvestment, AccountOther:
		return true
	}
	return false
}

var allCategories = map[Category]bool{
	CategoryFood: true, CategoryTransport: true, CategoryEntertainment: true,
	CategoryShopping: true, CategoryBills: true, CategoryHealth: true,
	CategoryEducation: true, CategorySalary: true, CategoryInvestment: true,
	CategoryOther: true,
}

// ValidFor reports whether the category may be used with the given
// transaction type: income is restricted to salary, investment and other,
// expense to everything except salary and investment.
func (c Category) ValidFor(t TransactionType) bool {
	if !allCategories[c] {
		return false
	}
	switch t {
	case Income:
		return c == CategorySalary || c == CategoryInvestment || c == CategoryOther
	case Expense:
		return c != CategorySalary && c != CategoryInvestment
	}
	return false
}

// EffectiveAmount is the amount in base currency used for all balance and
// summary math: ConvertedAmount for foreign entries, Amount otherwise.
func (t Transaction) EffectiveAmount() Money {
	if t.ForeignCurrency {
		return t.ConvertedAmount
	}
	return t.Amount
}

// SignedCents is the effective amount signed by type, income positive and
// expense negative.
func (t Transaction) SignedCents() int64 {
	if t.Type == Expense {
		return -t.EffectiveAmount().Cents
	}
	return t.EffectiveAmount().Cents
}

// TransactionInput carries the caller-supplied fields of a new transaction;
// the store assigns ID and CreatedAt.
type TransactionInput struct {
	Description string
	Amount      Money
	Type        TransactionType
	Category    Category
	AccountID   string
	Date        time.Time

	ForeignCurrency  bool
	OriginalAmount   Money
	OriginalCurrency Currency
	ConvertedAmount  Money
}

func (in TransactionInput) Validate() error {
	if len(strings.TrimSpace(in.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(in.Description) > 100 {
		return errors.New("description too long (max 100 characters)")
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if !in.Category.ValidFor(in.Type) {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(in.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	// The foreign currency fields travel as a group.
	if in.ForeignCurrency {
		if err := in.OriginalAmount.Validate(); err != nil {
			return ErrForeignFields
		}
		if !in.OriginalCurrency.Valid() || in.OriginalCurrency == BaseCurrency {
			return ErrForeignFields
		}
		if err := in.ConvertedAmount.Validate(); err != nil {
			return ErrForeignFields
		}
	} else if in.OriginalAmount.Cents != 0 || in.OriginalCurrency != "" || in.ConvertedAmount.Cents != 0 {
		return ErrForeignFields
	}
	return nil
}

// Validate checks a full transaction against the same rules as a new one,
// used after merging a partial update.
func (t Transaction) Validate() error {
	return TransactionInput{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		AccountID:   t.AccountID,
		Date:        t.Date,

		ForeignCurrency:  t.ForeignCurrency,
		OriginalAmount:   t.OriginalAmount,
		OriginalCurrency: t.OriginalCurrency,
		ConvertedAmount:  t.ConvertedAmount,
	}.Validate()
}

// TransactionPatch is a partial update; nil fields are left unchanged.
// ID and CreatedAt are never patchable.
type TransactionPatch struct {
	Description *string
	Amount      *Money
	Type        *TransactionType
	Category    *Category
	AccountID   *string
	Date        *time.Time

	ForeignCurrency  *bool
	OriginalAmount   *Money
	OriginalCurrency *Currency
	ConvertedAmount  *Money
}

// ApplyTo merges the patch into t and returns the result.
func (p TransactionPatch) ApplyTo(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.ForeignCurrency != nil {
		t.ForeignCurrency = *p.ForeignCurrency
	}
	if p.OriginalAmount != nil {
		t.OriginalAmount = *p.OriginalAmount
	}
	if p.OriginalCurrency != nil {
		t.OriginalCurrency = *p.OriginalCurrency
	}
	if p.ConvertedAmount != nil {
		t.ConvertedAmount = *p.ConvertedAmount
	}
	return t
}

// AccountInput carries the caller-supplied fields of a new account.
type AccountInput struct {
	Name           string
	Type           AccountType
	Color          string
	Icon           string
	InitialBalance Money
}

func (in AccountInput) Validate() error {
	if len(strings.TrimSpace(in.Name)) == 0 {
		return ErrEmptyName
	}
	if len(in.Name) > 50 {
		return errors.New("account name too long (max 50 characters)")
	}
	if !in.Type.Valid() {
		return ErrInvalidAccount
	}
	if in.InitialBalance.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
