package expr

import "math"

// Apply applies op to already evaluated operands.
// It returns *OperationError when the operand kinds are not accepted by op.
//
//	Logical         Bool, Bool                        -> Bool
//	== !=           same kind: Bool, Number or String -> Bool
//	in              Bool, Number or String; Array     -> Bool
//	Relational      Bool, Bool or Number, Number      -> Bool (false < true)
//	Additive        Number, Number                    -> Number
//	Multiplicative  Number, Number                    -> Number
func Apply(left Value, op Op, right Value) (Value, error) {
	var (
		result Value
		ok     bool
	)
	switch op.Family() {
	case FamilyLogical:
		result, ok = applyLogical(left, op, right)
	case FamilyEquality:
		result, ok = applyEquality(left, op, right)
	case FamilyRelational:
		result, ok = applyRelational(left, op, right)
	case FamilyAdditive, FamilyMultiplicative:
		result, ok = applyArithmetic(left, op, right)
	}
	if !ok {
		return Value{}, &OperationError{Left: left, Op: op, Right: right}
	}
	return result, nil
}

func applyLogical(left Value, op Op, right Value) (Value, bool) {
	l, lok := left.AsBool()
	r, rok := right.AsBool()
	if !lok || !rok {
		return Value{}, false
	}
	if op == OpAnd {
		return Bool(l && r), true
	}
	return Bool(l || r), true
}

func applyEquality(left Value, op Op, right Value) (Value, bool) {
	if op == OpIn {
		return contains(left, right)
	}
	if left.Kind() != right.Kind() || !isScalar(left.Kind()) {
		return Value{}, false
	}
	eq := left.Equal(right)
	if op == OpNeq {
		return Bool(!eq), true
	}
	return Bool(eq), true
}

// contains reports whether right is an array holding an element equal to left.
func contains(left, right Value) (Value, bool) {
	if right.Kind() != KindArray || !isScalar(left.Kind()) {
		return Value{}, false
	}
	for _, e := range right.arr {
		if e.Equal(left) {
			return Bool(true), true
		}
	}
	return Bool(false), true
}

func applyRelational(left Value, op Op, right Value) (Value, bool) {
	var l, r float64
	switch {
	case left.Kind() == KindNumber && right.Kind() == KindNumber:
		l, _ = left.AsNumber()
		r, _ = right.AsNumber()
	case left.Kind() == KindBool && right.Kind() == KindBool:
		l, r = boolRank(left), boolRank(right)
	default:
		return Value{}, false
	}

	switch op {
	case OpGt:
		return Bool(l > r), true
	case OpLt:
		return Bool(l < r), true
	case OpGte:
		return Bool(l >= r), true
	case OpLte:
		return Bool(l <= r), true
	default:
		return Value{}, false
	}
}

func applyArithmetic(left Value, op Op, right Value) (Value, bool) {
	l, lok := left.AsNumber()
	r, rok := right.AsNumber()
	if !lok || !rok {
		return Value{}, false
	}
	switch op {
	case OpAdd:
		return Number(l + r), true
	case OpSub:
		return Number(l - r), true
	case OpMul:
		return Number(l * r), true
	case OpDiv:
		return Number(l / r), true
	case OpMod:
		return Number(math.Mod(l, r)), true
	default:
		return Value{}, false
	}
}

func isScalar(k Kind) bool {
	return k == KindBool || k == KindNumber || k == KindString
}

func boolRank(v Value) float64 {
	if b, _ := v.AsBool(); b {
		return 1
	}
	return 0
}
