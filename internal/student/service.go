package student

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateStudent = errors.New("student id or barcode already exists")
	ErrHasAttendance    = errors.New("student has attendance records")
)

// Catalog is the slice of the form/class catalog the roster needs: the
// class-belongs-to-form check and the class letter used in generated IDs.
type Catalog interface {
	Validate(form int, class string) error
	ClassLetter(form int, class string) (rune, error)
}

// AttendanceStore is the ledger surface needed for guarded deletes. Deleting
// a student with history is refused unless the caller asks for a cascade.
type AttendanceStore interface {
	CountByStudent(ctx context.Context, studentID string) (int, error)
	DeleteByStudent(ctx context.Context, studentID string) (int, error)
}

type EnrollInput struct {
	StudentID string
	Name      string
	Form      int
	Class     string
}

type Service interface {
	Enroll(ctx context.Context, in EnrollInput) (*Student, error)
	GetStudentByID(ctx context.Context, id int) (*Student, error)
	ListStudents(ctx context.Context, filter Filter) ([]Student, error)
	UpdateStudent(ctx context.Context, id int, name string, form int, class string) (*Student, error)
	DeleteStudent(ctx context.Context, id int, cascade bool) error
	ClearAttendance(ctx context.Context, id int) (int, error)
}

type service struct {
	repo          Repository
	catalog       Catalog
	attendance    AttendanceStore
	barcodePrefix string
	now           func() time.Time
}

func NewService(repo Repository, catalog Catalog, attendance AttendanceStore, barcodePrefix string, now func() time.Time) Service {
	return &service{
		repo:          repo,
		catalog:       catalog,
		attendance:    attendance,
		barcodePrefix: barcodePrefix,
		now:           now,
	}
}

func (s *service) Enroll(ctx context.Context, in EnrollInput) (*Student, error) {
	if in.Name == "" || in.Form == 0 || in.Class == "" {
		return nil, ErrInvalidInput
	}
	if err := s.catalog.Validate(in.Form, in.Class); err != nil {
		return nil, err
	}

	studentID := in.StudentID
	if studentID == "" {
		generated, err := s.generateStudentID(ctx, in.Form, in.Class)
		if err != nil {
			return nil, err
		}
		studentID = generated
	}

	student := &Student{
		StudentID: studentID,
		Name:      in.Name,
		Form:      in.Form,
		Class:     in.Class,
		Barcode:   s.barcodePrefix + studentID,
	}
	return s.repo.Create(ctx, student)
}

// generateStudentID builds IDs of the shape <year><form><letter><sequence>,
// e.g. 202603C016 for the 16th student of form 3's third class in 2026.
// Concurrent enrollments may race on the sequence; the unique constraint on
// student_id turns the loser into ErrDuplicateStudent.
func (s *service) generateStudentID(ctx context.Context, form int, class string) (string, error) {
	letter, err := s.catalog.ClassLetter(form, class)
	if err != nil {
		return "", err
	}
	count, err := s.repo.CountByFormClass(ctx, form, class)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%02d%c%03d", s.now().Year(), form, letter, count+1), nil
}

func (s *service) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListStudents(ctx context.Context, filter Filter) ([]Student, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateStudent(ctx context.Context, id int, name string, form int, class string) (*Student, error) {
	if id <= 0 || name == "" || form == 0 || class == "" {
		return nil, ErrInvalidInput
	}
	if err := s.catalog.Validate(form, class); err != nil {
		return nil, err
	}

	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Name = name
	student.Form = form
	student.Class = class
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) DeleteStudent(ctx context.Context, id int, cascade bool) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.attendance.CountByStudent(ctx, student.StudentID)
	if err != nil {
		return err
	}
	if count > 0 {
		if !cascade {
			return ErrHasAttendance
		}
		if _, err := s.attendance.DeleteByStudent(ctx, student.StudentID); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) ClearAttendance(ctx context.Context, id int) (int, error) {
	if id <= 0 {
		return 0, ErrInvalidInput
	}
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.attendance.DeleteByStudent(ctx, student.StudentID)
}
