package expr

import (
	"math"
	"sync"
	"testing"

	exprlang "github.com/expr-lang/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	x, err := Parse(src)
	require.NoError(t, err, "parse %q", src)
	return x
}

func TestEvaluate_Properties(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		params Params
		want   Value
	}{
		{"sum", "1 + 2 + 3", nil, Number(6)},
		{"sum with parameter", "{a} + 2 + 3", Params{"a": Number(1)}, Number(6)},
		{"greater or equal", "{a} >= 1", Params{"a": Number(1)}, Bool(true)},
		{"in array", "{a} in [1, 2, 3]", Params{"a": Number(1)}, Bool(true)},
		{"precedence", "1 + 2 * 3", nil, Number(7)},
		{"parentheses", "(1 + 2) * 3", nil, Number(9)},
		{
			"business rule", "{age} >= 18 && {country} in ['US', 'CA']",
			Params{"age": FromInt(21), "country": String("CA")}, Bool(true),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(mustParse(t, tt.expr), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_JSON(t *testing.T) {
	x, err := ParseJSON([]byte(`{"lhs":"{a}","op":"in","rhs":[4,5,6]}`))
	require.NoError(t, err)

	got, err := Evaluate(x, Params{"a": Number(4)})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), got)
}

func TestEvaluate_TypeTable(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		// Logical
		{"true && true", Bool(true)},
		{"true && false", Bool(false)},
		{"false && false", Bool(false)},
		{"true || false", Bool(true)},
		{"false || false", Bool(false)},
		{"true || true", Bool(true)},

		// Additive
		{"10 + 10", Number(20)},
		{"10 - 10", Number(0)},
		{"1.5 + 1.5", Number(3)},
		{"1.5 + 1", Number(2.5)},
		{"3 - 1.5", Number(1.5)},

		// Multiplicative
		{"10 * 10", Number(100)},
		{"10 / 10", Number(1)},
		{"1.1 * 2", Number(2.2)},
		{"10 % 3", Number(1)},
		{"10 % 2.5", Number(0)},
		{"1 / 0", Number(math.Inf(1))},

		// Equality
		{"10 == 10", Bool(true)},
		{"10 == 1", Bool(false)},
		{"10 != 10", Bool(false)},
		{"10 == 10.0", Bool(true)},
		{"true == true", Bool(true)},
		{"true != true", Bool(false)},
		{"'hello' == 'hello'", Bool(true)},
		{"'hello' != 'world'", Bool(true)},

		// in
		{"'one' in ['one', 'two']", Bool(true)},
		{"'three' in ['one', 'two']", Bool(false)},
		{"true in [1, 'true', true]", Bool(true)},
		{"1 in ['1']", Bool(false)},
		{"1 in []", Bool(false)},

		// Relational
		{"2 > 1", Bool(true)},
		{"2 >= 2", Bool(true)},
		{"1 < 2", Bool(true)},
		{"1 <= 1", Bool(true)},
		{"2.0 > 1", Bool(true)},
		{"false < true", Bool(true)},
		{"true > false", Bool(true)},
		{"true <= true", Bool(true)},
		{"false >= true", Bool(false)},

		// Mixed folds
		{"1 == 1 == true", Bool(true)},
		{"2 > 1 == true", Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(mustParse(t, tt.expr), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_InvalidOperation(t *testing.T) {
	tests := []struct {
		expr  string
		left  Value
		op    Op
		right Value
	}{
		{"1 + false", Number(1), OpAdd, Bool(false)},
		{"1 - false", Number(1), OpSub, Bool(false)},
		{"1 || true", Number(1), OpOr, Bool(true)},
		{"1 && true", Number(1), OpAnd, Bool(true)},
		{"1 * true", Number(1), OpMul, Bool(true)},
		{"1 / true", Number(1), OpDiv, Bool(true)},
		{"1 % false", Number(1), OpMod, Bool(false)},
		{"1 == true", Number(1), OpEq, Bool(true)},
		{"1 != true", Number(1), OpNeq, Bool(true)},
		{"1 in true", Number(1), OpIn, Bool(true)},
		{"[1] in [1]", Array(Number(1)), OpIn, Array(Number(1))},
		{"[1] == [1]", Array(Number(1)), OpEq, Array(Number(1))},
		{"'a' < 'b'", String("a"), OpLt, String("b")},
		{"1 > true", Number(1), OpGt, Bool(true)},
		{"'a' + 'b'", String("a"), OpAdd, String("b")},
		{"'1' + 1", String("1"), OpAdd, Number(1)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Evaluate(mustParse(t, tt.expr), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOperation)

			var oerr *OperationError
			require.ErrorAs(t, err, &oerr)
			assert.Equal(t, &OperationError{Left: tt.left, Op: tt.op, Right: tt.right}, oerr)
		})
	}
}

func TestOperationError_Message(t *testing.T) {
	_, err := Evaluate(mustParse(t, "1 + false"), nil)
	require.Error(t, err)
	assert.Equal(t, "invalid operation Number(1) Additive(Add) Bool(false)", err.Error())
}

func TestEvaluate_InvalidParameter(t *testing.T) {
	_, err := Evaluate(mustParse(t, "{x}"), Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	var perr *ParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "x", perr.Name)
	assert.Equal(t, "invalid parameter x", err.Error())
}

func TestEvaluate_NoShortCircuit(t *testing.T) {
	tests := []string{
		"false && {missing}",
		"true || {missing}",
		"false && ({missing} > 1)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Evaluate(mustParse(t, src), Params{})
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	// The left operand is evaluated first, so its error wins.
	_, err := Evaluate(mustParse(t, "{left} && {right}"), Params{})
	var perr *ParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "left", perr.Name)
}

func TestEvaluate_Idempotent(t *testing.T) {
	x := mustParse(t, "({a} * 2 + {b}) % 7 >= 3 && {c} in ['x', 'y']")
	params := Params{"a": Number(5), "b": Number(4), "c": String("y")}

	first, err := Evaluate(x, params)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Evaluate(x, params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEvaluate_Concurrent(t *testing.T) {
	x := mustParse(t, "{n} * {n} + 1")
	ev := New()

	var wg sync.WaitGroup
	results := make([]Value, 64)
	errs := make([]error, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ev.Evaluate(x, Params{"n": FromInt(i)})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, FromInt(i*i+1), results[i])
	}
}

func TestEvaluate_MaxDepth(t *testing.T) {
	var x Expr = num(1)
	for i := 0; i < 20; i++ {
		x = NewBinary(x, OpAdd, num(1))
	}

	_, err := New(WithMaxDepth(10)).Evaluate(x, nil)
	assert.ErrorIs(t, err, ErrMaxDepth)

	got, err := New(WithMaxDepth(21)).Evaluate(x, nil)
	require.NoError(t, err)
	assert.Equal(t, Number(21), got)
}

func TestEvaluate_MalformedTree(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidExpr)

	_, err = Evaluate(NewBinary(num(1), OpAdd, nil), nil)
	assert.ErrorIs(t, err, ErrInvalidExpr)

	_, err = Evaluate(NewBinary(num(1), Op(0), num(2)), nil)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestApply(t *testing.T) {
	v, err := Apply(Number(7), OpMod, Number(4))
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)

	_, err = Apply(Value{}, OpEq, Value{})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

// TestEvaluate_AgreesWithExprLang cross-checks arithmetic and comparisons on
// literals against github.com/expr-lang/expr, which shares the precedence
// rules for these operators.
func TestEvaluate_AgreesWithExprLang(t *testing.T) {
	inputs := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"10 - 4 - 3",
		"7 / 2",
		"2 * (3 + 4) - 5 / 2",
		"1.5 * 4 + 0.25",
		"100 / 8 / 5",
		"1 < 2 && 3 >= 3",
		"2 > 3 || 1 <= 1",
		"1 == 1 && 2 != 3",
		"2 in [1, 2, 3]",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			ours, err := Evaluate(mustParse(t, in), nil)
			require.NoError(t, err)

			theirs, err := exprlang.Eval(in, nil)
			require.NoError(t, err)

			switch want := theirs.(type) {
			case bool:
				assert.Equal(t, Bool(want), ours)
			case int:
				n, ok := ours.AsNumber()
				require.True(t, ok)
				assert.InDelta(t, float64(want), n, 1e-9)
			case float64:
				n, ok := ours.AsNumber()
				require.True(t, ok)
				assert.InDelta(t, want, n, 1e-9)
			default:
				t.Fatalf("unexpected expr-lang result %T", theirs)
			}
		})
	}
}
