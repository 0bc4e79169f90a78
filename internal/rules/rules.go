// Package rules evaluates ordered lists of tagged regular expressions.
// Site profiles, autofill field rules and agency patterns are all expressed
// as a List and matched with the same loop.
package rules

import "regexp"

type Rule[T any] struct {
	Tag     T
	Pattern *regexp.Regexp
}

type List[T any] []Rule[T]

// New compiles patterns in order. It panics on a bad pattern, so lists are
// meant to be built at package init.
func New[T any](pairs ...Pair[T]) List[T] {
	out := make(List[T], 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Rule[T]{Tag: p.Tag, Pattern: regexp.MustCompile(p.Expr)})
	}
	return out
}

type Pair[T any] struct {
	Tag  T
	Expr string
}

func P[T any](tag T, expr string) Pair[T] {
	return Pair[T]{Tag: tag, Expr: expr}
}

// First returns the tag of the first rule whose pattern matches s.
func (l List[T]) First(s string) (T, bool) {
	for _, r := range l {
		if r.Pattern.MatchString(s) {
			return r.Tag, true
		}
	}
	var zero T
	return zero, false
}

// All returns the tags of every matching rule, in list order.
func (l List[T]) All(s string) []T {
	var out []T
	for _, r := range l {
		if r.Pattern.MatchString(s) {
			out = append(out, r.Tag)
		}
	}
	return out
}

// Index is the position of the first rule tagged tag, or -1.
func Index[T comparable](l List[T], tag T) int {
	for i, r := range l {
		if r.Tag == tag {
			return i
		}
	}
	return -1
}
