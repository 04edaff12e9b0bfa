package domain

// StockTransaction is one immutable ledger entry recording a quantity change.
// Rows are append-only; a deleted medicine leaves its transactions orphaned.
type StockTransaction struct {
	ID           int64   `db:"id" json:"id"`
	MedicineID   int64   `db:"medicine_id" json:"medicine_id"`
	ChangeAmount int64   `db:"change_amount" json:"change_amount"`
	ActionType   string  `db:"action_type" json:"action_type"`
	Timestamp    string  `db:"timestamp" json:"timestamp"`
	Note         *string `db:"note" json:"note,omitempty"`
}

// HistoryEntry is a transaction joined with its medicine's name and batch
// for the history view.
type HistoryEntry struct {
	ID           int64   `db:"id" json:"id"`
	MedicineName string  `db:"medicine_name" json:"medicine_name"`
	BatchNumber  string  `db:"batch_number" json:"batch_number"`
	Change       int64   `db:"change" json:"change"`
	ActionType   string  `db:"action_type" json:"action_type"`
	Timestamp    string  `db:"timestamp" json:"timestamp"`
	Note         *string `db:"note" json:"note"`
}
