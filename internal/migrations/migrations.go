package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the inventory backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_name TEXT NOT NULL,
            potency TEXT NOT NULL,
            form TEXT NOT NULL DEFAULT 'Dilution',
            bottle_size TEXT NOT NULL DEFAULT '30ml',
            manufacturer TEXT NOT NULL DEFAULT 'Dr. Reckeweg',
            batch_number TEXT NOT NULL,
            expiry_date TEXT NOT NULL,
            mrp TEXT NOT NULL,
            purchase_price TEXT NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 0,
            low_stock_threshold INTEGER NOT NULL DEFAULT 5,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(medicine_name, potency, form, bottle_size, manufacturer, batch_number)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(medicine_name);`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_batch ON medicines(batch_number);`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_id INTEGER NOT NULL,
            change_amount INTEGER NOT NULL,
            action_type TEXT NOT NULL DEFAULT 'ADJUST',
            timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
            note TEXT,
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_medicine ON transactions(medicine_id);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp DESC);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
