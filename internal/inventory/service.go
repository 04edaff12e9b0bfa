// Package inventory enforces the business invariants of the medicine catalog
// and its append-only transaction ledger: non-negative stock, duplicate-SKU
// rejection, price sanity, and the expiry-sale guard with its note-based
// override.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"homeovault/m/domain"
)

const dateLayout = "2006-01-02"

// overrideToken in a transaction note permits selling expired stock.
// Deliberately a substring match on free text, not a dedicated flag.
const overrideToken = "OVERRIDE"

const (
	defaultForm         = "Dilution"
	defaultBottleSize   = "30ml"
	defaultManufacturer = "Dr. Reckeweg"
	defaultThreshold    = 5
)

// Service owns all writes to the medicines and transactions tables.
type Service struct {
	db *sqlx.DB
}

// New constructs a Service over the shared database handle.
func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// CreateParams carries the fields for a new medicine batch. A nil
// LowStockThreshold takes the default of 5.
type CreateParams struct {
	MedicineName      string
	Potency           string
	Form              string
	BottleSize        string
	Manufacturer      string
	BatchNumber       string
	ExpiryDate        string
	MRP               decimal.Decimal
	PurchasePrice     decimal.Decimal
	Quantity          int64
	LowStockThreshold *int64
}

// CreateMedicine validates and inserts a new catalog row. Checks run in
// order: MRP, purchase price, expiry date, duplicate SKU. An already-expired
// expiry date is accepted; warning about it is a presentation concern.
func (s *Service) CreateMedicine(ctx context.Context, p CreateParams) (domain.MedicineBatch, error) {
	var m domain.MedicineBatch

	if !p.MRP.IsPositive() {
		return m, fmt.Errorf("%w: MRP must be greater than 0", ErrInvalidPrice)
	}
	if p.PurchasePrice.IsNegative() {
		return m, fmt.Errorf("%w: purchase price cannot be negative", ErrInvalidPrice)
	}

	expiry, err := time.Parse(dateLayout, p.ExpiryDate)
	if err != nil {
		return m, fmt.Errorf("%w: expected YYYY-MM-DD, got %q", ErrInvalidDate, p.ExpiryDate)
	}

	m = domain.MedicineBatch{
		MedicineName:      p.MedicineName,
		Potency:           p.Potency,
		Form:              p.Form,
		BottleSize:        p.BottleSize,
		Manufacturer:      p.Manufacturer,
		BatchNumber:       p.BatchNumber,
		ExpiryDate:        expiry.Format(dateLayout),
		MRP:               p.MRP,
		PurchasePrice:     p.PurchasePrice,
		Quantity:          p.Quantity,
		LowStockThreshold: defaultThreshold,
	}
	if m.Form == "" {
		m.Form = defaultForm
	}
	if m.BottleSize == "" {
		m.BottleSize = defaultBottleSize
	}
	if m.Manufacturer == "" {
		m.Manufacturer = defaultManufacturer
	}
	if p.LowStockThreshold != nil {
		m.LowStockThreshold = *p.LowStockThreshold
	}

	// Fast path for a friendlier error; the unique index below is the
	// source of truth under concurrent creates.
	var exists bool
	err = s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM medicines
		 WHERE medicine_name = ? AND potency = ? AND form = ?
		   AND bottle_size = ? AND manufacturer = ? AND batch_number = ?)`,
		m.MedicineName, m.Potency, m.Form, m.BottleSize, m.Manufacturer, m.BatchNumber)
	if err != nil {
		return m, fmt.Errorf("duplicate check failed: %w", err)
	}
	if exists {
		return m, ErrDuplicateSKU
	}

	err = s.db.QueryRowxContext(ctx,
		`INSERT INTO medicines
		 (medicine_name, potency, form, bottle_size, manufacturer, batch_number,
		  expiry_date, mrp, purchase_price, quantity, low_stock_threshold)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id, created_at, last_updated`,
		m.MedicineName, m.Potency, m.Form, m.BottleSize, m.Manufacturer, m.BatchNumber,
		m.ExpiryDate, m.MRP, m.PurchasePrice, m.Quantity, m.LowStockThreshold,
	).Scan(&m.ID, &m.CreatedAt, &m.LastUpdated)
	if err != nil {
		if isUniqueViolation(err) {
			return m, ErrDuplicateSKU
		}
		return m, fmt.Errorf("insert medicine: %w", err)
	}

	return m, nil
}

// ApplyTransaction atomically applies a signed quantity delta to a medicine
// and appends the matching ledger row. Returns the post-mutation quantity.
func (s *Service) ApplyTransaction(ctx context.Context, medicineID, changeAmount int64, actionType string, note *string) (int64, error) {
	if actionType == "" {
		actionType = "ADJUST"
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var m domain.MedicineBatch
	err = tx.GetContext(ctx, &m, `SELECT * FROM medicines WHERE id = ?`, medicineID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load medicine: %w", err)
	}

	if m.Quantity+changeAmount < 0 {
		return 0, fmt.Errorf("%w: cannot reduce below zero", ErrInsufficientStock)
	}

	if changeAmount < 0 && s.isExpired(m.ExpiryDate) {
		if note == nil || !strings.Contains(*note, overrideToken) {
			return 0, fmt.Errorf("%w: add '%s' to the note to force the sale", ErrExpiredMedicine, overrideToken)
		}
	}

	// Conditional update so the stock guard holds even if another writer
	// slipped in between the read and this statement.
	res, err := tx.ExecContext(ctx,
		`UPDATE medicines
		 SET quantity = quantity + ?, last_updated = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity + ? >= 0`,
		changeAmount, medicineID, changeAmount)
	if err != nil {
		return 0, fmt.Errorf("update quantity: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("update quantity: %w", err)
	} else if n == 0 {
		return 0, fmt.Errorf("%w: cannot reduce below zero", ErrInsufficientStock)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (medicine_id, change_amount, action_type, note)
		 VALUES (?, ?, ?, ?)`,
		medicineID, changeAmount, actionType, note); err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	var newQuantity int64
	if err := tx.GetContext(ctx, &newQuantity, `SELECT quantity FROM medicines WHERE id = ?`, medicineID); err != nil {
		return 0, fmt.Errorf("reload quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return newQuantity, nil
}

// DeleteMedicine removes a catalog row outright. Transaction history is left
// behind; orphaned ledger rows are an accepted consequence.
func (s *Service) DeleteMedicine(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) isExpired(expiryDate string) bool {
	d, err := time.Parse(dateLayout, expiryDate)
	if err != nil {
		return false
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
