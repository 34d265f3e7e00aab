// Package filter implements name masks for catalog object filters.
//
// Masks use SQL LIKE syntax: % matches any run of characters and _ matches
// exactly one. A backslash escapes the next character. Masks are compiled to
// glob patterns once and reused for every name.
package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/leapstack-labs/leaperd/pkg/core"
	"golang.org/x/text/cases"
)

// globMeta lists the characters with a meaning in glob patterns.
const globMeta = `*?[]{}\!`

// Mask is a compiled include/exclude filter.
type Mask struct {
	include       []glob.Glob
	exclude       []glob.Glob
	caseSensitive bool
}

// New compiles a Mask from configuration.
func New(cfg core.FilterConfig) (*Mask, error) {
	m := &Mask{caseSensitive: cfg.CaseSensitive}

	var err error
	if m.include, err = compileAll(cfg.Include, cfg.CaseSensitive); err != nil {
		return nil, fmt.Errorf("invalid include mask: %w", err)
	}
	if m.exclude, err = compileAll(cfg.Exclude, cfg.CaseSensitive); err != nil {
		return nil, fmt.Errorf("invalid exclude mask: %w", err)
	}
	return m, nil
}

// MustNew is like New but panics on an invalid mask. Intended for tests and
// static configuration.
func MustNew(cfg core.FilterConfig) *Mask {
	m, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// Matches reports whether name passes the filter: it must hit an include mask
// (or there are none) and no exclude mask.
func (m *Mask) Matches(name string) bool {
	if m == nil {
		return true
	}
	if !m.caseSensitive {
		name = fold(name)
	}

	if len(m.include) > 0 && !anyMatch(m.include, name) {
		return false
	}
	return !anyMatch(m.exclude, name)
}

func anyMatch(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func compileAll(masks []string, caseSensitive bool) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(masks))
	for _, mask := range masks {
		if !caseSensitive {
			mask = fold(mask)
		}
		g, err := glob.Compile(ToGlob(mask))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", mask, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// ToGlob translates a LIKE mask into a glob pattern.
func ToGlob(mask string) string {
	var b strings.Builder
	escaped := false
	for _, r := range mask {
		switch {
		case escaped:
			writeLiteral(&b, r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteRune('*')
		case r == '_':
			b.WriteRune('?')
		default:
			writeLiteral(&b, r)
		}
	}
	if escaped {
		writeLiteral(&b, '\\')
	}
	return b.String()
}

func writeLiteral(b *strings.Builder, r rune) {
	if strings.ContainsRune(globMeta, r) {
		b.WriteRune('\\')
	}
	b.WriteRune(r)
}

// fold returns the case-folded form of s. A Caser is stateful, so each call
// gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

var _ core.ObjectFilter = (*Mask)(nil)
