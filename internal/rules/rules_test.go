package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatchWins(t *testing.T) {
	l := New(
		P("a", `(?i)foo`),
		P("b", `(?i)foo|bar`),
	)

	tag, ok := l.First("FOO bar")
	assert.True(t, ok)
	assert.Equal(t, "a", tag)

	tag, ok = l.First("bar")
	assert.True(t, ok)
	assert.Equal(t, "b", tag)

	_, ok = l.First("baz")
	assert.False(t, ok)
}

func TestAllAndIndex(t *testing.T) {
	l := New(
		P(1, `x`),
		P(2, `y`),
		P(3, `x`),
	)
	assert.Equal(t, []int{1, 3}, l.All("xx"))
	assert.Nil(t, l.All("zz"))
	assert.Equal(t, 1, Index(l, 2))
	assert.Equal(t, -1, Index(l, 9))
}
