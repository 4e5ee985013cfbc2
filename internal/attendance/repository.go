package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrAlreadyRecorded means a record for this (student, date) already
	// exists. The first record wins and is never mutated.
	ErrAlreadyRecorded = errors.New("attendance already recorded for this student and date")
	// ErrNoRecord means no check-in exists for the (student, date) pair.
	ErrNoRecord = errors.New("no attendance record")
)

type Repository interface {
	// TryRecord inserts a new check-in. It returns ErrAlreadyRecorded when a
	// record for the same (student, date) exists, whether found by the insert
	// racing another scan or already committed long before.
	TryRecord(ctx context.Context, rec *Record) error
	Find(ctx context.Context, studentID, date string) (*Record, error)
	ListForDate(ctx context.Context, date string) ([]Record, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
	DeleteByStudent(ctx context.Context, studentID string) (int, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) TryRecord(ctx context.Context, rec *Record) error {
	_, err := r.db.NewInsert().Model(rec).Returning("*").Exec(ctx)
	if err != nil {
		// The unique constraint on (student_id, date) is the backstop for
		// concurrent scans: the second insert loses and must surface as a
		// duplicate, not as a storage failure.
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrAlreadyRecorded
		}
		return err
	}
	return nil
}

func (r *repository) Find(ctx context.Context, studentID, date string) (*Record, error) {
	rec := new(Record)
	err := r.db.NewSelect().Model(rec).
		Where("a.student_id = ?", studentID).
		Where("a.date = ?", date).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return rec, nil
}

func (r *repository) ListForDate(ctx context.Context, date string) ([]Record, error) {
	var recs []Record
	err := r.db.NewSelect().Model(&recs).
		Where("a.date = ?", date).
		Order("time_in ASC").
		Scan(ctx)
	return recs, err
}

func (r *repository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	return r.db.NewSelect().
		Model((*Record)(nil)).
		Where("a.student_id = ?", studentID).
		Count(ctx)
}

func (r *repository) DeleteByStudent(ctx context.Context, studentID string) (int, error) {
	result, err := r.db.NewDelete().
		Model((*Record)(nil)).
		Where("student_id = ?", studentID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}
