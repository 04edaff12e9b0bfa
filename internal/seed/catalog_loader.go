package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// RestoreCatalog ingests a previously exported inventory CSV into the
// medicines table, skipping rows whose SKU already exists. Intended for
// first-run restores from another machine's export; absence of the file is
// not an error.
func RestoreCatalog(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("no catalog to restore at %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read catalog header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start catalog restore: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO medicines
		(medicine_name, potency, form, bottle_size, manufacturer, batch_number,
		 expiry_date, mrp, purchase_price, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare catalog insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read catalog row: %v", err)
			continue
		}
		// Export column order: ID, Name, Potency, Form, Size, Manufacturer,
		// Batch, Expiry, MRP, Purchase Price, Quantity. The ID is dropped;
		// the restore assigns fresh ones.
		if len(record) < 11 {
			continue
		}
		name := strings.TrimSpace(record[1])
		if name == "" {
			continue
		}
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[10]), 10, 64)
		if err != nil {
			quantity = 0
		}

		if _, err := stmt.Exec(name, record[2], record[3], record[4], record[5],
			record[6], record[7], record[8], record[9], quantity); err != nil {
			log.Printf("unable to insert medicine %s: %v", name, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit catalog restore: %v", err)
	} else {
		log.Printf("restored catalog with %d rows", rows)
	}
}
