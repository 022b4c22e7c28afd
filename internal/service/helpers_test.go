package service

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// sqlmockDB bundles the mock handle with the *sql.DB the services see.
type sqlmockDB struct {
	*sql.DB
}

func newMockDB(t *testing.T) (*sqlmockDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	return &sqlmockDB{DB: db}, mock
}
