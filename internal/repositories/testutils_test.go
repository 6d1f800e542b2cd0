package repositories_test

import (
	_ "embed"
	"testing"

	"github.com/tkivisto/legalintake/internal/db"
)

//go:embed testdata/fixtures.sql
var testFixtures string

// newTestDB creates a new in-memory database with test fixtures.
func newTestDB(t *testing.T) *db.Database {
	t.Helper()

	dbs, err := db.NewDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}

	if _, err = dbs.ReadWrite.Exec(testFixtures); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err = dbs.ReadOnly.Close(); err != nil {
			t.Fatal(err)
		}
		if err = dbs.ReadWrite.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}
