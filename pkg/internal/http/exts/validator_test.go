package exts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string `json:"name" validate:"required,max=5"`
	Status int    `json:"status" validate:"oneof=0 1"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Hidden string `json:"-" validate:"required"`
}

func TestFieldErrors(t *testing.T) {
	assert.Empty(t, FieldErrors(ValidateStruct(&sample{Name: "ok", Status: 1, Hidden: "x"})))

	errs := FieldErrors(ValidateStruct(&sample{Name: "too long", Status: 3, Email: "nope"}))
	assert.Equal(t, []string{"Ensure this value has at most 5 characters."}, errs["name"])
	assert.Equal(t, []string{"Select a valid choice."}, errs["status"])
	assert.Equal(t, []string{"Enter a valid email address."}, errs["email"])

	errs = FieldErrors(ValidateStruct(&sample{Status: 1, Hidden: "x"}))
	assert.Equal(t, map[string][]string{"name": {"This field is required."}}, errs)

	errs = FieldErrors(errors.New("boom"))
	assert.Equal(t, []string{"boom"}, errs[""])
}
