package textcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		in       string
		expected Pattern
	}{
		{"", Lower},
		{"goose", Lower},
		{"Goose", Capitalized},
		{"GOOSE", Upper},
		{"G", Upper},
		{"McGoose", Capitalized},
		{"123", Lower},
		{"ÉCLAIR", Upper},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Detect(tc.in))
		})
	}
}

func TestApply(t *testing.T) {
	assert.Equal(t, "mixed Case", Apply("mixed Case", Lower))
	assert.Equal(t, "Mixed Case", Apply("mixed Case", Capitalized))
	assert.Equal(t, "MIXED CASE", Apply("mixed Case", Upper))
	assert.Equal(t, "", Apply("", Capitalized))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "The Lord of the Rings", Title("the lord of the rings"))
	assert.Equal(t, "A Tale of Two Cities", Title("a tale of two cities"))
	assert.Equal(t, "War and Peace", Title("war and peace"))
	assert.Equal(t, "Double  Space", Title("double  space"))
}
