package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"sleepscore-bot/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Records *RecordsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Records: &RecordsRepository{pool: pool},
	}
}
