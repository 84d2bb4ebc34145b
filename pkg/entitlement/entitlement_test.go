package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetRoundTrip(t *testing.T) {
	s := NewSet(CategoryAdd, Base, ValueAdd)

	assert.True(t, s.Has(Base))
	assert.True(t, s.Has(CategoryAdd))
	assert.False(t, s.Has(CategoryDelete))

	// stable order, regardless of construction order
	assert.Equal(t, []string{Base, CategoryAdd, ValueAdd}, s.Names())
	assert.Equal(t, "konsum,konsum.category.add,konsum.value.add", s.Join())

	assert.Equal(t, s, ParseSet(s.Join()))
}

func TestParseSetEmpty(t *testing.T) {
	s := ParseSet("")

	assert.Empty(t, s)
	assert.False(t, s.Has(Base))
}

func TestNewSetSkipsEmptyNames(t *testing.T) {
	s := NewSet("", Base, "")

	assert.Equal(t, []string{Base}, s.Names())
}

func TestNoWildcardExpansion(t *testing.T) {
	s := NewSet(Base)

	// holding the base entitlement grants nothing else
	assert.False(t, s.Has(CategoryAdd))
	assert.False(t, s.Has(AdminStop))
}
