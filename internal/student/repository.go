package student

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByBarcode(ctx context.Context, barcode string) (*Student, error)
	List(ctx context.Context, filter Filter) ([]Student, error)
	CountByFormClass(ctx context.Context, form int, class string) (int, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return nil, ErrDuplicateStudent
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("s.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByBarcode(ctx context.Context, barcode string) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("s.barcode = ?", barcode).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Student, error) {
	var students []Student
	q := r.db.NewSelect().Model(&students)
	if filter.Form != 0 {
		q = q.Where("s.form = ?", filter.Form)
	}
	if filter.Class != "" {
		q = q.Where("s.class = ?", filter.Class)
	}
	err := q.Order("name ASC").Scan(ctx)
	return students, err
}

func (r *repository) CountByFormClass(ctx context.Context, form int, class string) (int, error) {
	return r.db.NewSelect().
		Model((*Student)(nil)).
		Where("s.form = ?", form).
		Where("s.class = ?", class).
		Count(ctx)
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	result, err := r.db.NewUpdate().
		Model(student).
		Column("name", "form", "class").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	student := &Student{ID: id}
	result, err := r.db.NewDelete().Model(student).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}
