package ruleset_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/ruleset"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		rule   ruleset.Rule
		params expr.Params
		want   expr.Value
	}{
		{
			name:   "text",
			rule:   textRule("adult", "{age} >= 18"),
			params: expr.Params{"age": expr.FromInt(30)},
			want:   expr.Bool(true),
		},
		{
			name: "json",
			rule: ruleset.Rule{
				Name:   "domestic",
				Syntax: ruleset.SyntaxJSON,
				Source: `{"lhs": "{country}", "op": "in", "rhs": ["US", "CA"]}`,
			},
			params: expr.Params{"country": expr.String("FR")},
			want:   expr.Bool(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := ruleset.Compile(tt.rule)
			require.NoError(t, err)

			got, err := expr.Evaluate(x, tt.params)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %#v", got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := ruleset.Compile(ruleset.Rule{Name: "x", Syntax: ruleset.SyntaxText})
	assert.ErrorIs(t, err, ruleset.ErrInvalidRule)

	_, err = ruleset.Compile(textRule("broken", "1 +"))
	require.Error(t, err)
	assert.ErrorIs(t, err, expr.ErrInvalidExpr)
	assert.Contains(t, err.Error(), "compile rule broken")

	_, err = ruleset.Compile(ruleset.Rule{Name: "j", Syntax: ruleset.SyntaxJSON, Source: `{"lhs": 1, "op": "^", "rhs": 2}`})
	assert.ErrorIs(t, err, expr.ErrInvalidOp)

	_, err = ruleset.Compile(textRule("deep", "((((1))))"), expr.WithMaxDepth(2))
	assert.ErrorIs(t, err, expr.ErrMaxDepth)
}

func TestSet_AddGetRemove(t *testing.T) {
	set := ruleset.NewSet()
	assert.Equal(t, 0, set.Len())

	c, err := set.Add(textRule("adult", "{age} >= 18"))
	require.NoError(t, err)
	assert.Equal(t, "adult", c.Rule.Name)
	assert.Equal(t, "({age} >= 18)", c.Expr.String())

	got, ok := set.Get("adult")
	require.True(t, ok)
	assert.Equal(t, c.Expr, got.Expr)

	set.Remove("adult")
	_, ok = set.Get("adult")
	assert.False(t, ok)
	assert.Equal(t, 0, set.Len())
}

func TestSet_AddFailureKeepsPrevious(t *testing.T) {
	set := ruleset.NewSet()
	_, err := set.Add(textRule("adult", "{age} >= 18"))
	require.NoError(t, err)

	_, err = set.Add(textRule("adult", "{age} >="))
	require.Error(t, err)

	got, ok := set.Get("adult")
	require.True(t, ok)
	assert.Equal(t, "{age} >= 18", got.Rule.Source)
}

func TestSet_NamesAndSnapshot(t *testing.T) {
	set := ruleset.NewSet()
	for _, n := range []string{"c", "a", "b"} {
		_, err := set.Add(textRule(n, "true"))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "b", "c"}, set.Names())

	snap := set.Snapshot()
	require.Len(t, snap, 3)
	set.Remove("a")
	assert.Equal(t, "a", snap[0].Rule.Name)
	assert.Equal(t, 2, set.Len())
}

func TestSet_LoadStore(t *testing.T) {
	store := ruleset.NewMemoryStore()
	defer store.Close()

	_, err := store.Save(textRule("adult", "{age} >= 18"))
	require.NoError(t, err)
	_, err = store.Save(ruleset.Rule{Name: "even", Syntax: ruleset.SyntaxJSON, Source: `{"lhs": {"lhs": "{n}", "op": "%", "rhs": 2}, "op": "==", "rhs": 0}`})
	require.NoError(t, err)

	set := ruleset.NewSet()
	n, err := set.LoadStore(store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"adult", "even"}, set.Names())
}

func TestSet_LoadStore_CompileErrorLeavesSetUnchanged(t *testing.T) {
	store := ruleset.NewMemoryStore()
	defer store.Close()

	_, err := store.Save(textRule("good", "true"))
	require.NoError(t, err)
	_, err = store.Save(textRule("bad", "{x} +"))
	require.NoError(t, err)

	set := ruleset.NewSet()
	n, err := set.LoadStore(store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile rule bad")
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, set.Len())
}

func TestSet_LoadStore_ClosedStore(t *testing.T) {
	store := ruleset.NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := ruleset.NewSet().LoadStore(store)
	assert.ErrorIs(t, err, ruleset.ErrStoreClosed)
}

func TestSet_Concurrent(t *testing.T) {
	set := ruleset.NewSet()
	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := set.Add(textRule(fmt.Sprintf("rule-%d", i), fmt.Sprintf("{n} > %d", i)))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			for _, c := range set.Snapshot() {
				_, err := expr.Evaluate(c.Expr, expr.Params{"n": expr.FromInt(10)})
				assert.NoError(t, err)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 20, set.Len())
}
