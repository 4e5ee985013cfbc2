package catalog

import (
	"context"

	"github.com/uptrace/bun"
)

type Repository interface {
	List(ctx context.Context) ([]Form, error)
	Seed(ctx context.Context, forms []Form) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) List(ctx context.Context) ([]Form, error) {
	var forms []Form
	err := r.db.NewSelect().Model(&forms).Order("form ASC").Scan(ctx)
	return forms, err
}

// Seed inserts any forms not yet present. Existing rows are left untouched so
// administrative edits survive restarts.
func (r *repository) Seed(ctx context.Context, forms []Form) error {
	if len(forms) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().
		Model(&forms).
		On("CONFLICT (form) DO NOTHING").
		Exec(ctx)
	return err
}
