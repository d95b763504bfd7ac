package validation_test

import (
	"testing"

	"election-service/internal/validation"

	"github.com/stretchr/testify/assert"
)

type registration struct {
	StudentID string `validate:"required,studentid"`
}

func TestStudentIDTag(t *testing.T) {
	v := validation.New()

	for _, ok := range []string{"2021-00001", "1999-12345"} {
		assert.NoError(t, v.Struct(registration{StudentID: ok}), ok)
	}
	for _, bad := range []string{"", "21-00001", "2021-0001", "2021_00001", "2021-000012", "abcd-12345"} {
		assert.Error(t, v.Struct(registration{StudentID: bad}), bad)
	}
}

func TestNewRegistersTags(t *testing.T) {
	assert.NotPanics(t, func() { validation.New() })
}
