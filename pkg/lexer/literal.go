package lexer

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
)

// Conversion errors. Each is wrapped with the offending lexeme.
var (
	ErrIntRange     = errors.New("integer literal out of i32 range")
	ErrNotIntegral  = errors.New("integer literal is not a whole number")
	ErrFloatRange   = errors.New("float literal out of f32 range")
	ErrMalformedNum = errors.New("malformed numeric literal")
)

const (
	intSuffix   = "i32"
	floatSuffix = "f32"
)

func digits() pc.Parser[string] {
	return pc.TakeWhile1(IsDigit, "digit", pc.Lexical)
}

func sign() pc.Parser[byte] {
	return pc.Opt(pc.OneOf("+-", "sign"))
}

// exponent matches `[eE][+-]?[0-9]+`.
func exponent() pc.Parser[string] {
	return pc.Recognize(pc.Preceded(pc.OneOf("eE", "exponent"), pc.Preceded(sign(), digits())))
}

// suffix matches an optional `_`-prefixed type tag.
func suffix(tag string) pc.Parser[string] {
	return pc.Recognize(pc.Preceded(pc.Opt(pc.Tag("_")), pc.Tag(tag)))
}

// numberEnd succeeds when a number cannot continue: the next character is
// neither a word character nor a decimal point.
func numberEnd() pc.Parser[struct{}] {
	return pc.Not(pc.Satisfy(func(ch byte) bool { return IsIdentContinue(ch) || ch == '.' }, "", pc.Lexical), "end of number")
}

// IntegerSpan recognizes `[+-]?[0-9]+([eE][+-]?[0-9]+)?(_?i32)?`.
func IntegerSpan() pc.Parser[string] {
	body := pc.Recognize(pc.Preceded(sign(), pc.Preceded(digits(), pc.Preceded(pc.Opt(exponent()), pc.Opt(suffix(intSuffix))))))
	return pc.Label(pc.Quiet(pc.Terminated(body, numberEnd())), "integer")
}

// FloatSpan recognizes a signed decimal with a mandatory point and digits on
// at least one side, an optional exponent and an optional `_?f32` tag.
func FloatSpan() pc.Parser[string] {
	mantissa := pc.Alt(
		pc.Recognize(pc.Preceded(digits(), pc.Preceded(pc.Tag("."), pc.Opt(digits())))),
		pc.Recognize(pc.Preceded(pc.Tag("."), digits())),
	)
	body := pc.Recognize(pc.Preceded(sign(), pc.Preceded(mantissa, pc.Preceded(pc.Opt(exponent()), pc.Opt(suffix(floatSuffix))))))
	return pc.Label(pc.Quiet(pc.Terminated(body, numberEnd())), "float")
}

// BooleanSpan recognizes `true` or `false`.
func BooleanSpan() pc.Parser[string] {
	return pc.Label(pc.Alt(word("true"), word("false")), "boolean")
}

// ParseInt32 converts an integer span. The exponent is applied exactly; the
// result must be a whole number within the int32 range.
func ParseInt32(text string) (int32, error) {
	s := trimSuffix(text, intSuffix)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	mant, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, exp = s[:i], s[i+1:]
	}

	m, ok := new(big.Int).SetString(mant, 10)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMalformedNum, text)
	}
	if neg {
		m.Neg(m)
	}

	if exp != "" && m.Sign() != 0 {
		e, err := strconv.Atoi(exp)
		if err != nil {
			// The exponent does not even fit an int; its sign decides the failure.
			if strings.HasPrefix(exp, "-") {
				return 0, fmt.Errorf("%w: %s", ErrNotIntegral, text)
			}
			return 0, fmt.Errorf("%w: %s", ErrIntRange, text)
		}
		switch {
		case e > 10:
			return 0, fmt.Errorf("%w: %s", ErrIntRange, text)
		case e > 0:
			m.Mul(m, pow10(e))
		case e < 0:
			if -e > len(mant) {
				return 0, fmt.Errorf("%w: %s", ErrNotIntegral, text)
			}
			q, r := new(big.Int).QuoRem(m, pow10(-e), new(big.Int))
			if r.Sign() != 0 {
				return 0, fmt.Errorf("%w: %s", ErrNotIntegral, text)
			}
			m = q
		}
	}

	if !m.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrIntRange, text)
	}
	v := m.Int64()
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s", ErrIntRange, text)
	}
	return int32(v), nil
}

// ParseFloat32 converts a float span with 32-bit rounding.
func ParseFloat32(text string) (float32, error) {
	s := trimSuffix(text, floatSuffix)
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s", ErrFloatRange, text)
		}
		if !errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrMalformedNum, text)
		}
	}
	return float32(v), nil
}

func trimSuffix(text, tag string) string {
	s := strings.TrimSuffix(text, tag)
	if len(s) != len(text) {
		s = strings.TrimSuffix(s, "_")
	}
	return s
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// BoolLiteral scans a boolean literal token.
func BoolLiteral() pc.Parser[*ast.BoolLiteral] {
	span := BooleanSpan()
	return Lexeme(func(cur *pc.Cursor) (*ast.BoolLiteral, *pc.Failure) {
		start := cur.Mark()
		text, f := span(cur)
		if f != nil {
			return nil, f
		}
		return &ast.BoolLiteral{Span: cur.SpanFrom(start), Value: text == "true"}, nil
	})
}

// IntLiteral scans and converts an integer literal token. Conversion failures
// are fatal numeric failures.
func IntLiteral() pc.Parser[*ast.IntLiteral] {
	conv := pc.Convert(IntegerSpan(), pc.Numeric, func(text string) (*ast.IntLiteral, error) {
		v, err := ParseInt32(text)
		if err != nil {
			return nil, err
		}
		return &ast.IntLiteral{Text: text, Value: v}, nil
	})
	return Lexeme(spanned(conv, func(n *ast.IntLiteral, s ast.Span) { n.Span = s }))
}

// FloatLiteral scans and converts a float literal token.
func FloatLiteral() pc.Parser[*ast.FloatLiteral] {
	conv := pc.Convert(FloatSpan(), pc.Numeric, func(text string) (*ast.FloatLiteral, error) {
		v, err := ParseFloat32(text)
		if err != nil {
			return nil, err
		}
		return &ast.FloatLiteral{Text: text, Value: v}, nil
	})
	return Lexeme(spanned(conv, func(n *ast.FloatLiteral, s ast.Span) { n.Span = s }))
}

func spanned[T any](p pc.Parser[T], set func(T, ast.Span)) pc.Parser[T] {
	return func(cur *pc.Cursor) (T, *pc.Failure) {
		start := cur.Mark()
		v, f := p(cur)
		if f != nil {
			return v, f
		}
		set(v, cur.SpanFrom(start))
		return v, nil
	}
}
