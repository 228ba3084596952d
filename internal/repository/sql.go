package repository

import "github.com/jmoiron/sqlx"

// NewSQLStore builds the repositories backed by an opened and migrated SQL database.
func NewSQLStore(db *sqlx.DB) *Store {
	return &Store{
		Files: NewFileRepository(db),
		Users: NewUserRepository(db),
		Ping:  db.PingContext,
		Close: db.Close,
	}
}
