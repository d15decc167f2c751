package db

import (
	"context"

	"gorm.io/gorm"

	"gearpool/ledger"
)

// Repo 将 ledger.Store 落到 GORM/Postgres 上
type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var _ ledger.Store = (*Repo)(nil)

// Atomic runs fn inside one database transaction; the Store it hands out is
// bound to that transaction, so every read and write commits or rolls back
// together.
func (r *Repo) Atomic(ctx context.Context, fn func(tx ledger.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}
