package model

import "time"

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

type Transaction struct {
	ID        int64           `db:"id"         json:"id"`
	Title     string          `db:"title"      json:"title"`
	Amount    Money           `db:"amount"     json:"amount"`
	Type      TransactionType `db:"type"       json:"type"`
	Date      string          `db:"date"       json:"date"` // YYYY-MM-DD
	Category  *string         `db:"category"   json:"category,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

type FinanceSummary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

func Summarize(txs []Transaction) FinanceSummary {
	var s FinanceSummary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income += t.Amount
		case Expense:
			s.Expense += t.Amount
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}
