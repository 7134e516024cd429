package val_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deeplines/buildingblocks/val"
)

type registration struct {
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age"   validate:"gte=18"`
	Name  string `json:"name"  validate:"min=2"`
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{
			name:  "valid struct",
			input: registration{Email: "a@b.com", Age: 30, Name: "Bo"},
			want:  nil,
		},
		{
			name:  "multiple violations",
			input: registration{Email: "not-an-email", Age: 12, Name: "x"},
			want: []string{
				"email: invalid email format",
				"age: must be greater than or equal to 18",
				"name: must be at least 2 characters",
			},
		},
		{
			name:  "pointer to struct",
			input: &registration{Email: "a@b.com", Age: 20, Name: "Bo"},
			want:  nil,
		},
		{
			name:  "non-struct value is valid",
			input: "just a string",
			want:  nil,
		},
		{
			name:  "nil pointer is valid",
			input: (*registration)(nil),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, val.Violations(tt.input))
		})
	}
}

func TestStruct(t *testing.T) {
	assert.NoError(t, val.Struct(registration{Email: "a@b.com", Age: 19, Name: "Bo"}))
	assert.Error(t, val.Struct(registration{}))
}
