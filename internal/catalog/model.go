package catalog

import "github.com/uptrace/bun"

// Form is one grade level and the ordered list of class names valid for it.
// The ordering matters: a class's position determines the letter used in
// generated student IDs (first class -> A, second -> B, ...).
type Form struct {
	bun.BaseModel `bun:"table:forms,alias:f"`

	ID      int      `bun:"id,pk,autoincrement" json:"-"`
	Form    int      `bun:"form,unique,notnull" json:"form"`
	Name    string   `bun:"name,notnull" json:"name"`
	Classes []string `bun:"classes,array" json:"classes"`
}

// Defaults returns the seed catalog: ordinary forms 1-5 share one class list,
// the two post-secondary forms have their own.
func Defaults() []Form {
	ordinary := []string{"Advance", "Brilliant", "Creative", "Dynamic", "Excellent", "Generous", "Honest"}

	forms := make([]Form, 0, 7)
	for i := 1; i <= 5; i++ {
		forms = append(forms, Form{
			Form:    i,
			Name:    "Form " + string(rune('0'+i)),
			Classes: append([]string(nil), ordinary...),
		})
	}
	forms = append(forms,
		Form{Form: 6, Name: "Lower Six", Classes: []string{"Science", "Humanities"}},
		Form{Form: 7, Name: "Upper Six", Classes: []string{"Science", "Humanities"}},
	)
	return forms
}
