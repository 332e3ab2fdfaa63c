package evaluator

import (
	"math/big"
	"strings"

	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

// binaryOp applies every binary operator except the short-circuiting and/or.
// text is the operator as written, for messages.
func binaryOp(op token.Kind, text string, left, right Object) (Object, *diagnostics.Error) {
	switch op {
	case token.EQUALS, token.DIFF:
		eq, err := equal(left, right)
		if err != nil {
			return nil, err
		}
		return nativeBool(eq == (op == token.EQUALS)), nil
	case token.IN:
		return contains(right, left)
	}

	switch l := left.(type) {
	case *Num:
		if r, ok := right.(*Num); ok {
			return numOp(op, text, l.Value, r.Value)
		}
	case *Str:
		if r, ok := right.(*Str); ok {
			return strOp(op, text, l.Value, r.Value)
		}
	case *List:
		if r, ok := right.(*List); ok && op == token.PLUS {
			return &List{Elements: append(copyCells(l.Elements), copyCells(r.Elements)...)}, nil
		}
	}
	return nil, unsupported(text, left, right)
}

func unsupported(text string, left, right Object) *diagnostics.Error {
	return diagnostics.Errorf(diagnostics.ErrT001, "unsupported operand types for %s: '%s' and '%s'", text, left.Type(), right.Type())
}

func numOp(op token.Kind, text string, a, b *big.Int) (Object, *diagnostics.Error) {
	switch op {
	case token.PLUS:
		return &Num{Value: new(big.Int).Add(a, b)}, nil
	case token.MINUS:
		return &Num{Value: new(big.Int).Sub(a, b)}, nil
	case token.MULT:
		return &Num{Value: new(big.Int).Mul(a, b)}, nil
	case token.DIV, token.REM:
		if b.Sign() == 0 {
			if op == token.DIV {
				return nil, diagnostics.Errorf(diagnostics.ErrA001, "division by zero")
			}
			return nil, diagnostics.Errorf(diagnostics.ErrA001, "modulo by zero")
		}
		q, m := floorDivMod(a, b)
		if op == token.DIV {
			return &Num{Value: q}, nil
		}
		return &Num{Value: m}, nil
	case token.GREATER:
		return nativeBool(a.Cmp(b) > 0), nil
	case token.GREATER_OR_EQUALS:
		return nativeBool(a.Cmp(b) >= 0), nil
	case token.LESS:
		return nativeBool(a.Cmp(b) < 0), nil
	case token.LESS_OR_EQUALS:
		return nativeBool(a.Cmp(b) <= 0), nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "unsupported operand types for %s: 'Num' and 'Num'", text)
}

// floorDivMod rounds the quotient toward negative infinity; the remainder
// takes the sign of the divisor.
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, m := new(big.Int).QuoRem(a, b, new(big.Int))
	if m.Sign() != 0 && m.Sign() != b.Sign() {
		q.Sub(q, big.NewInt(1))
		m.Add(m, b)
	}
	return q, m
}

func strOp(op token.Kind, text string, a, b string) (Object, *diagnostics.Error) {
	switch op {
	case token.PLUS:
		return &Str{Value: a + b}, nil
	case token.GREATER:
		return nativeBool(a > b), nil
	case token.GREATER_OR_EQUALS:
		return nativeBool(a >= b), nil
	case token.LESS:
		return nativeBool(a < b), nil
	case token.LESS_OR_EQUALS:
		return nativeBool(a <= b), nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "unsupported operand types for %s: 'Str' and 'Str'", text)
}

// equal compares scalars by value, lists structurally and everything else
// by identity. Dicts cannot be compared.
func equal(a, b Object) (bool, *diagnostics.Error) {
	if a.Type() == DICT_OBJ || b.Type() == DICT_OBJ {
		return false, diagnostics.Errorf(diagnostics.ErrT001, "Dict has no identity and cannot be compared")
	}
	if a.Type() != b.Type() {
		return false, nil
	}

	switch av := a.(type) {
	case *Num:
		return av.Value.Cmp(b.(*Num).Value) == 0, nil
	case *Str:
		return av.Value == b.(*Str).Value, nil
	case *Boolean:
		return av.Value == b.(*Boolean).Value, nil
	case *None:
		return true, nil
	case *List:
		bv := b.(*List)
		if len(av.Elements) != len(bv.Elements) {
			return false, nil
		}
		for i := range av.Elements {
			eq, err := equal(av.Elements[i].Get(), bv.Elements[i].Get())
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	}
	return a == b, nil
}

// contains implements "needle in haystack".
func contains(haystack, needle Object) (Object, *diagnostics.Error) {
	switch h := haystack.(type) {
	case *List:
		for _, cell := range h.Elements {
			eq, err := equal(cell.Get(), needle)
			if err != nil {
				return nil, err
			}
			if eq {
				return TRUE, nil
			}
		}
		return FALSE, nil
	case *Dict:
		_, ok, err := h.Get(needle)
		if err != nil {
			return nil, err
		}
		return nativeBool(ok), nil
	case *Str:
		n, ok := needle.(*Str)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrT001, "'in <Str>' requires Str as left operand, not %s", needle.Type())
		}
		return nativeBool(strings.Contains(h.Value, n.Value)), nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "argument of type '%s' is not iterable", haystack.Type())
}
