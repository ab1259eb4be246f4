// Package testdb creates in-memory notes databases for tests.
package testdb

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/kuitang/edushare/internal/db"
)

var dbCounter atomic.Int64

// NewNotesDBInMemory creates an in-memory NotesDB for tests. Each call
// gets a uniquely named shared-cache database so connections from the
// same pool see one store without colliding across tests.
func NewNotesDBInMemory() (*db.NotesDB, error) {
	name := fmt.Sprintf("notes-test-%d", dbCounter.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory notes database: %w", err)
	}

	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(10)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping in-memory notes database: %w", err)
	}

	if err := applyFastSQLitePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply fast SQLite pragmas: %w", err)
	}

	if _, err := sqlDB.Exec(db.Schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize in-memory notes schema: %w", err)
	}

	return db.NewFromSQL(sqlDB), nil
}

func applyFastSQLitePragmas(sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA secure_delete=OFF",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
