package seed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeovault/m/internal/database"
	"homeovault/m/internal/migrations"
	"homeovault/m/internal/seed"
)

const exportCSV = `ID,Name,Potency,Form,Size,Manufacturer,Batch,Expiry,MRP,Purchase Price,Quantity
1,Arnica,30C,Dilution,30ml,SBL,B123,2030-01-01,100,50,10
2,Nux Vomica,200C,Dilution,30ml,SBL,B456,2029-06-30,120.50,60.25,5
3,,30C,Dilution,30ml,SBL,B999,2030-01-01,10,5,1
`

func TestRestoreCatalog(t *testing.T) {
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o644))

	seed.RestoreCatalog(db, path)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM medicines`))
	assert.Equal(t, 2, count, "blank-name row is skipped")

	var quantity int64
	require.NoError(t, db.Get(&quantity, `SELECT quantity FROM medicines WHERE batch_number = 'B456'`))
	assert.EqualValues(t, 5, quantity)

	// Restoring the same export again must not duplicate SKUs.
	seed.RestoreCatalog(db, path)
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM medicines`))
	assert.Equal(t, 2, count)
}

func TestRestoreCatalog_MissingFile(t *testing.T) {
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)

	seed.RestoreCatalog(db, filepath.Join(t.TempDir(), "absent.csv"))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM medicines`))
	assert.Zero(t, count)
}
