package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"homeovault/m/domain"
)

// historyLimit caps the history view at the most recent entries.
const historyLimit = 50

// ListMedicines returns the full catalog.
func (s *Service) ListMedicines(ctx context.Context) ([]domain.MedicineBatch, error) {
	medicines := []domain.MedicineBatch{}
	if err := s.db.SelectContext(ctx, &medicines, `SELECT * FROM medicines`); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// History returns the most recent ledger entries joined with their medicine's
// name and batch number, newest first. Orphaned entries (medicine deleted)
// drop out of the inner join.
func (s *Service) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	err := s.db.SelectContext(ctx, &entries,
		`SELECT t.id, m.medicine_name, m.batch_number, t.change_amount AS change,
		        t.action_type, t.timestamp, t.note
		 FROM transactions t
		 JOIN medicines m ON m.id = t.medicine_id
		 ORDER BY t.timestamp DESC, t.id DESC
		 LIMIT ?`, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// csvHeader is the fixed column order of the catalog export.
var csvHeader = []string{
	"ID", "Name", "Potency", "Form", "Size", "Manufacturer",
	"Batch", "Expiry", "MRP", "Purchase Price", "Quantity",
}

// ExportCSV writes the full catalog to w, one row per medicine.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	medicines, err := s.ListMedicines(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range medicines {
		record := []string{
			fmt.Sprintf("%d", m.ID),
			m.MedicineName,
			m.Potency,
			m.Form,
			m.BottleSize,
			m.Manufacturer,
			m.BatchNumber,
			m.ExpiryDate,
			m.MRP.String(),
			m.PurchasePrice.String(),
			fmt.Sprintf("%d", m.Quantity),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ScanReport summarizes the catalog's health at startup.
type ScanReport struct {
	Total    int
	Expired  []domain.MedicineBatch
	LowStock []domain.MedicineBatch
}

// StartupScan partitions the catalog into expired and low-stock batches.
// Purely diagnostic; it mutates nothing.
func (s *Service) StartupScan(ctx context.Context) (ScanReport, error) {
	medicines, err := s.ListMedicines(ctx)
	if err != nil {
		return ScanReport{}, err
	}

	report := ScanReport{Total: len(medicines)}
	for _, m := range medicines {
		if s.isExpired(m.ExpiryDate) {
			report.Expired = append(report.Expired, m)
		}
		if m.Quantity <= m.LowStockThreshold {
			report.LowStock = append(report.LowStock, m)
		}
	}
	return report, nil
}

// Log prints the scan summary in the startup banner format.
func (r ScanReport) Log() {
	log.Printf("--- STARTUP HEALTH SCAN ---")
	log.Printf("Total Medicines: %d", r.Total)
	log.Printf("Expired Batches: %d", len(r.Expired))
	for _, m := range r.Expired {
		log.Printf("  [EXPIRED] %s (%s) Batch: %s Exp: %s",
			m.MedicineName, m.Potency, m.BatchNumber, m.ExpiryDate)
	}
	log.Printf("Low Stock Items: %d", len(r.LowStock))
	log.Printf("---------------------------")
}
