package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringUsesAlphabet(t *testing.T) {
	r := New()
	s := r.String(32, "ab")

	assert.Len(t, s, 32)
	assert.Empty(t, strings.Trim(s, "ab"))
}

func TestStringEmptyInputs(t *testing.T) {
	r := New()
	assert.Empty(t, r.String(0, "abc"))
	assert.Empty(t, r.String(5, ""))
}

func TestShortIDLength(t *testing.T) {
	r := New()
	id := r.ShortID(8)

	assert.Len(t, id, 8)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, r.ShortID(8))
}

func TestShortIDFullLength(t *testing.T) {
	r := New()
	assert.Len(t, r.ShortID(0), 36)
}
