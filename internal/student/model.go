package student

import "github.com/uptrace/bun"

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	StudentID string `bun:"student_id,unique,notnull" json:"studentId"`
	Name      string `bun:"name,notnull" json:"name" validate:"required"`
	Form      int    `bun:"form,notnull" json:"form" validate:"required,min=1"`
	Class     string `bun:"class,notnull" json:"class" validate:"required"`
	Barcode   string `bun:"barcode,unique,notnull" json:"barcode"`
}

// Filter narrows roster queries by form, optionally further by class.
// The zero value matches every student.
type Filter struct {
	Form  int
	Class string
}
