package combinator

import (
	"fmt"
	"strings"
)

// Parser is a grammar rule: it consumes from the cursor and returns a value,
// or fails.
type Parser[T any] func(c *Cursor) (T, *Failure)

// Parse runs p over source and requires it to consume the whole input.
func Parse[T any](p Parser[T], source, filename string) (T, error) {
	c := NewCursor(source, filename)
	v, f := Terminated(p, EOF())(c)
	if f != nil {
		var zero T
		return zero, c.Deepest(f)
	}
	return v, nil
}

// Tag matches the literal text s.
func Tag(s string) Parser[string] {
	label := fmt.Sprintf("'%s'", s)
	return func(c *Cursor) (string, *Failure) {
		if !strings.HasPrefix(c.Rest(), s) {
			return "", c.Fail(Syntactic, label)
		}
		c.AdvanceN(len(s))
		return s, nil
	}
}

// Satisfy matches one byte accepted by pred.
func Satisfy(pred func(byte) bool, label string, kind Kind) Parser[byte] {
	return func(c *Cursor) (byte, *Failure) {
		if c.AtEnd() || !pred(c.Peek()) {
			return 0, c.Fail(kind, label)
		}
		return c.Advance(), nil
	}
}

// OneOf matches one byte from set.
func OneOf(set string, label string) Parser[byte] {
	return Satisfy(func(ch byte) bool { return strings.IndexByte(set, ch) >= 0 }, label, Syntactic)
}

// TakeWhile consumes the longest run of bytes accepted by pred. It never fails.
func TakeWhile(pred func(byte) bool) Parser[string] {
	return func(c *Cursor) (string, *Failure) {
		start := c.Mark()
		for !c.AtEnd() && pred(c.Peek()) {
			c.Advance()
		}
		return c.Slice(start), nil
	}
}

// TakeWhile1 is TakeWhile requiring at least one byte.
func TakeWhile1(pred func(byte) bool, label string, kind Kind) Parser[string] {
	return func(c *Cursor) (string, *Failure) {
		if c.AtEnd() || !pred(c.Peek()) {
			return "", c.Fail(kind, label)
		}
		return TakeWhile(pred)(c)
	}
}

// EOF succeeds only at end of input.
func EOF() Parser[struct{}] {
	return func(c *Cursor) (struct{}, *Failure) {
		if !c.AtEnd() {
			return struct{}{}, c.Fail(Trailing, "end of input")
		}
		return struct{}{}, nil
	}
}

// Alt tries each alternative in order and returns the first success. When all
// fail, the failure that progressed furthest is returned.
func Alt[T any](ps ...Parser[T]) Parser[T] {
	return func(c *Cursor) (T, *Failure) {
		start := c.Mark()
		var best *Failure
		for _, p := range ps {
			v, f := p(c)
			if f == nil {
				return v, nil
			}
			if f.Fatal {
				return v, f
			}
			c.Reset(start)
			best = further(best, f)
		}
		var zero T
		return zero, best
	}
}

// Opt returns p's value, or the zero value without consuming input when p
// fails softly.
func Opt[T any](p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, *Failure) {
		start := c.Mark()
		v, f := p(c)
		if f != nil {
			if f.Fatal {
				return v, f
			}
			c.Reset(start)
			var zero T
			return zero, nil
		}
		return v, nil
	}
}

// Matched reports whether p succeeded, discarding its value.
func Matched[T any](p Parser[T]) Parser[bool] {
	return func(c *Cursor) (bool, *Failure) {
		start := c.Mark()
		_, f := p(c)
		if f != nil {
			if f.Fatal {
				return false, f
			}
			c.Reset(start)
			return false, nil
		}
		return true, nil
	}
}

// Many applies p zero or more times. It stops at the first soft failure or
// when p succeeds without consuming input.
func Many[T any](p Parser[T]) Parser[[]T] {
	return func(c *Cursor) ([]T, *Failure) {
		var out []T
		for {
			start := c.Mark()
			v, f := p(c)
			if f != nil {
				if f.Fatal {
					return nil, f
				}
				c.Reset(start)
				return out, nil
			}
			if c.Offset() == start.Offset() {
				return out, nil
			}
			out = append(out, v)
		}
	}
}

// Many1 is Many requiring at least one match.
func Many1[T any](p Parser[T]) Parser[[]T] {
	return func(c *Cursor) ([]T, *Failure) {
		first, f := p(c)
		if f != nil {
			return nil, f
		}
		rest, f := Many(p)(c)
		if f != nil {
			return nil, f
		}
		return append([]T{first}, rest...), nil
	}
}

// SepBy parses zero or more p separated by sep. A separator must be followed
// by another p; trailing separators fail.
func SepBy[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(c *Cursor) ([]T, *Failure) {
		start := c.Mark()
		first, f := p(c)
		if f != nil {
			if f.Fatal {
				return nil, f
			}
			c.Reset(start)
			return []T{}, nil
		}
		return sepTail(c, []T{first}, p, sep)
	}
}

// SepBy1 is SepBy requiring at least one p.
func SepBy1[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(c *Cursor) ([]T, *Failure) {
		first, f := p(c)
		if f != nil {
			return nil, f
		}
		return sepTail(c, []T{first}, p, sep)
	}
}

func sepTail[T, S any](c *Cursor, out []T, p Parser[T], sep Parser[S]) ([]T, *Failure) {
	for {
		m := c.Mark()
		if _, f := sep(c); f != nil {
			if f.Fatal {
				return nil, f
			}
			c.Reset(m)
			return out, nil
		}
		v, f := p(c)
		if f != nil {
			return nil, f
		}
		out = append(out, v)
	}
}

// Preceded runs a then b and returns b's value.
func Preceded[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return func(c *Cursor) (B, *Failure) {
		if _, f := a(c); f != nil {
			var zero B
			return zero, f
		}
		return b(c)
	}
}

// Terminated runs a then b and returns a's value.
func Terminated[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return func(c *Cursor) (A, *Failure) {
		v, f := a(c)
		if f != nil {
			return v, f
		}
		if _, f := b(c); f != nil {
			var zero A
			return zero, f
		}
		return v, nil
	}
}

// Delimited runs open, p, close and returns p's value.
func Delimited[A, B, C any](open Parser[A], p Parser[B], close Parser[C]) Parser[B] {
	return Preceded(open, Terminated(p, close))
}

// Map transforms p's value.
func Map[T, U any](p Parser[T], fn func(T) U) Parser[U] {
	return func(c *Cursor) (U, *Failure) {
		v, f := p(c)
		if f != nil {
			var zero U
			return zero, f
		}
		return fn(v), nil
	}
}

// Bind runs p and then the parser chosen from p's value.
func Bind[T, U any](p Parser[T], next func(T) Parser[U]) Parser[U] {
	return func(c *Cursor) (U, *Failure) {
		v, f := p(c)
		if f != nil {
			var zero U
			return zero, f
		}
		return next(v)(c)
	}
}

// Convert runs p and converts its value with fn. A conversion error becomes a
// fatal failure of the given kind positioned where p started, so that text
// that was recognized but cannot be converted is never retried as something
// else.
func Convert[T, U any](p Parser[T], kind Kind, fn func(T) (U, error)) Parser[U] {
	return func(c *Cursor) (U, *Failure) {
		start := c.Mark()
		v, f := p(c)
		if f != nil {
			var zero U
			return zero, f
		}
		u, err := fn(v)
		if err != nil {
			var zero U
			return zero, c.Fatal(start, kind, err.Error())
		}
		return u, nil
	}
}

// Recognize returns the input consumed by p instead of p's value.
func Recognize[T any](p Parser[T]) Parser[string] {
	return func(c *Cursor) (string, *Failure) {
		start := c.Mark()
		if _, f := p(c); f != nil {
			return "", f
		}
		return c.Slice(start), nil
	}
}

// Not succeeds without consuming input when p fails, and fails when p matches.
// Failures inside p are not reported as diagnostics candidates.
func Not[T any](p Parser[T], label string) Parser[struct{}] {
	return func(c *Cursor) (struct{}, *Failure) {
		start := c.Mark()
		saved := c.saveFurthest()
		_, f := p(c)
		c.Reset(start)
		c.restoreFurthest(saved)
		if f == nil {
			return struct{}{}, c.Fail(Syntactic, label)
		}
		if f.Fatal {
			return struct{}{}, f
		}
		return struct{}{}, nil
	}
}

// Quiet runs p without recording its failures as diagnostics candidates.
func Quiet[T any](p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, *Failure) {
		saved := c.saveFurthest()
		v, f := p(c)
		if f == nil || !f.Fatal {
			c.restoreFurthest(saved)
		}
		return v, f
	}
}

// Peek runs p without consuming input.
func Peek[T any](p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, *Failure) {
		start := c.Mark()
		v, f := p(c)
		c.Reset(start)
		return v, f
	}
}

// Label replaces the expected set of a failure that made no progress with a
// single descriptive label, e.g. "type" instead of every keyword a type may
// start with.
func Label[T any](p Parser[T], label string) Parser[T] {
	return func(c *Cursor) (T, *Failure) {
		start := c.Mark()
		saved := c.saveFurthest()
		v, f := p(c)
		if f == nil || f.Fatal {
			return v, f
		}
		if c.furthest != nil && c.furthest.Pos.Offset > start.Offset() {
			return v, f
		}
		c.Reset(start)
		c.restoreFurthest(saved)
		return v, c.FailAt(start, f.Kind, label)
	}
}

// Lazy defers construction of p, for recursive grammars.
func Lazy[T any](fn func() Parser[T]) Parser[T] {
	return func(c *Cursor) (T, *Failure) {
		return fn()(c)
	}
}

func further(a, b *Failure) *Failure {
	if a == nil || b.Pos.Offset > a.Pos.Offset {
		return b
	}
	if b.Pos.Offset == a.Pos.Offset {
		merged := *a
		merged.Expected = normalize(append(append([]string(nil), a.Expected...), b.Expected...))
		return &merged
	}
	return a
}
