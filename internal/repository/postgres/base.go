package postgres

import (
	"github.com/jmoiron/sqlx"
)

// BaseRepository holds the shared database handle embedded by every
// Postgres repository in this package.
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) *BaseRepository {
	return &BaseRepository{db: db}
}

func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}
