package thread

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Thread is a discussion board post.
type Thread struct {
	ID    string    `json:"id" db:"id"`
	Email string    `json:"email" db:"email"` // author
	Title string    `json:"title" db:"title"`
	Body  string    `json:"body" db:"body"`
	Date  time.Time `json:"date" db:"date"` // UTC
}

// NewThread contains the information submitted to post a Thread.
type NewThread struct {
	Title string `form:"title" validate:"required,notblank,max=256"`
	Body  string `form:"body" validate:"required,notblank"`
}

func (nt *NewThread) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Body = core.CleanString(nt.Body)
	return validate.Struct(nt)
}
