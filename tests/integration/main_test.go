//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup failed: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	if err := db.Teardown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration teardown failed: %v\n", err)
	}
	os.Exit(code)
}

func resetDB(t *testing.T) {
	t.Helper()
	if err := testDB.CleanupTables(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
