package ruleexpr

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/config"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/observability"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/ruleset"
)

// Result is the outcome of evaluating one rule in EvaluateAll.
type Result struct {
	Rule  string
	Value expr.Value
	Err   error
}

// Engine holds compiled rules and evaluates them by name.
//
// Engine is safe for concurrent use. Evaluation is synchronous and never
// mutates the compiled rules, so any number of goroutines may evaluate
// while others add or remove rules.
type Engine struct {
	cfg       engineConfig
	set       *ruleset.Set
	evaluator *expr.Evaluator

	// mu serializes writes so the store and the set stay in step.
	mu     sync.Mutex
	closed bool
}

// NewEngine creates an engine with no rules.
func NewEngine(opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		cfg:       cfg,
		set:       ruleset.NewSet(),
		evaluator: expr.New(expr.WithMaxDepth(cfg.maxDepth)),
	}
}

// Open validates s, opens its store and returns an engine with every stored
// rule and every rule file in s.RuleFiles loaded. opts are applied after
// the settings, so they take precedence.
func Open(ctx context.Context, s config.Settings, opts ...Option) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	store, err := s.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	all := append([]Option{FromSettings(s), WithStore(store)}, opts...)
	e := NewEngine(all...)

	if _, err := e.Load(ctx); err != nil {
		e.Close()
		return nil, err
	}
	for _, path := range s.RuleFiles {
		if _, err := e.LoadFile(ctx, path); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// AddRule compiles r, persists it if the engine has a store, and makes it
// available for evaluation. It returns the rule as stored, with ID and
// UpdatedAt set by the store. A rule that fails to compile is neither
// stored nor loaded, and any previous rule with the same name is kept.
func (e *Engine) AddRule(ctx context.Context, r ruleset.Rule) (ruleset.Rule, error) {
	c, err := e.compile(ctx, r)
	if err != nil {
		return ruleset.Rule{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ruleset.Rule{}, ErrEngineClosed
	}

	if e.cfg.store != nil {
		saved, err := e.cfg.store.Save(r)
		if err != nil {
			return ruleset.Rule{}, fmt.Errorf("save rule %s: %w", r.Name, err)
		}
		c.Rule = saved
	}

	e.set.Put(c)
	e.cfg.metrics.RecordRuleSetSize(ctx, e.set.Len())
	return c.Rule, nil
}

// RemoveRule deletes a rule from the engine and its store.
// Removing a rule that doesn't exist is not an error.
func (e *Engine) RemoveRule(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	if e.cfg.store != nil {
		if err := e.cfg.store.Delete(name); err != nil {
			return fmt.Errorf("delete rule %s: %w", name, err)
		}
	}

	e.set.Remove(name)
	e.cfg.metrics.RecordRuleSetSize(ctx, e.set.Len())
	return nil
}

// Load compiles every rule in the engine's store. If any rule fails to
// compile, no rule is loaded. Returns the number of rules loaded, or 0
// without error when the engine has no store.
func (e *Engine) Load(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrEngineClosed
	}
	if e.cfg.store == nil {
		return 0, nil
	}

	rules, err := e.cfg.store.List()
	if err != nil {
		return 0, fmt.Errorf("list rules: %w", err)
	}

	compiled := make([]ruleset.Compiled, 0, len(rules))
	for _, r := range rules {
		c, err := e.compile(ctx, r)
		if err != nil {
			return 0, err
		}
		compiled = append(compiled, c)
	}

	for _, c := range compiled {
		e.set.Put(c)
	}

	observability.LogRuleSetLoaded(e.cfg.logger, "store", len(compiled))
	e.cfg.metrics.RecordRuleSetSize(ctx, e.set.Len())
	return len(compiled), nil
}

// LoadFile adds every rule in a YAML or JSON rule file, persisting them if
// the engine has a store. Loading stops at the first rule that fails.
func (e *Engine) LoadFile(ctx context.Context, path string) (int, error) {
	rules, err := ruleset.LoadFile(path)
	if err != nil {
		return 0, err
	}

	for i, r := range rules {
		if _, err := e.AddRule(ctx, r); err != nil {
			return i, fmt.Errorf("%s: %w", path, err)
		}
	}

	observability.LogRuleSetLoaded(e.cfg.logger, path, len(rules))
	return len(rules), nil
}

// Evaluate runs the named rule against params.
//
// Errors from evaluation are returned as *RuleError wrapping the expr error,
// so errors.Is(err, expr.ErrInvalidParameter) and friends work as usual.
func (e *Engine) Evaluate(ctx context.Context, name string, params expr.Params) (expr.Value, error) {
	if err := ctx.Err(); err != nil {
		return expr.Value{}, err
	}

	c, ok := e.set.Get(name)
	if !ok {
		if e.isClosed() {
			return expr.Value{}, ErrEngineClosed
		}
		return expr.Value{}, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}

	return e.evaluate(ctx, c, params)
}

// EvaluateMap converts vars with expr.ParamsOf and evaluates the named rule.
func (e *Engine) EvaluateMap(ctx context.Context, name string, vars map[string]any) (expr.Value, error) {
	params, err := expr.ParamsOf(vars)
	if err != nil {
		return expr.Value{}, &RuleError{Rule: name, Err: err}
	}
	return e.Evaluate(ctx, name, params)
}

// Match evaluates the named rule and requires a Bool result.
func (e *Engine) Match(ctx context.Context, name string, params expr.Params) (bool, error) {
	v, err := e.Evaluate(ctx, name, params)
	if err != nil {
		return false, err
	}

	b, ok := v.AsBool()
	if !ok {
		return false, &RuleError{Rule: name, Err: fmt.Errorf("%w: got %s", ErrNotBool, v.Kind())}
	}
	return b, nil
}

// EvaluateAll evaluates every loaded rule against params, ordered by rule
// name. A failing rule reports its error in its Result and does not stop
// the others. If ctx is cancelled, the remaining rules report ctx.Err().
func (e *Engine) EvaluateAll(ctx context.Context, params expr.Params) []Result {
	rules := e.set.Snapshot()
	results := make([]Result, 0, len(rules))

	for _, c := range rules {
		res := Result{Rule: c.Rule.Name}
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Value, res.Err = e.evaluate(ctx, c, params)
		}
		results = append(results, res)
	}
	return results
}

// Rules returns the names of the loaded rules in sorted order.
func (e *Engine) Rules() []string {
	return e.set.Names()
}

// Rule returns the loaded rule with the given name.
func (e *Engine) Rule(name string) (ruleset.Rule, bool) {
	c, ok := e.set.Get(name)
	return c.Rule, ok
}

// Close unloads all rules and closes the store, if any.
// Calling Close more than once is safe.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	for _, name := range e.set.Names() {
		e.set.Remove(name)
	}

	if e.cfg.store != nil {
		return e.cfg.store.Close()
	}
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) compile(ctx context.Context, r ruleset.Rule) (ruleset.Compiled, error) {
	syntax := string(r.Syntax)
	ctx, span := e.cfg.spans.StartCompileSpan(ctx, r.Name, syntax)

	done := observability.TimedOperation()
	x, err := ruleset.Compile(r, expr.WithMaxDepth(e.cfg.maxDepth))
	elapsed := done()

	e.cfg.metrics.RecordCompile(ctx, syntax, elapsed, err)
	e.cfg.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogCompileError(e.cfg.logger, r.Name, syntax, err)
		return ruleset.Compiled{}, err
	}

	observability.LogCompile(e.cfg.logger, r.Name, syntax, observability.Milliseconds(elapsed))
	return ruleset.Compiled{Rule: r, Expr: x}, nil
}

func (e *Engine) evaluate(ctx context.Context, c ruleset.Compiled, params expr.Params) (expr.Value, error) {
	name := c.Rule.Name
	ctx, span := e.cfg.spans.StartEvaluateSpan(ctx, name)

	done := observability.TimedOperation()
	v, err := e.evaluator.Evaluate(c.Expr, params)
	elapsed := done()

	if err != nil {
		err = &RuleError{Rule: name, Err: err}
	}
	e.cfg.metrics.RecordEvaluation(ctx, name, elapsed, err)

	slow := e.cfg.slowThreshold > 0 && elapsed > e.cfg.slowThreshold
	if slow {
		e.cfg.spans.AddSpanEvent(ctx, "slow_evaluation",
			attribute.Float64("duration_ms", observability.Milliseconds(elapsed)))
	}
	e.cfg.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogEvaluateError(e.cfg.logger, name, err)
		return expr.Value{}, err
	}

	ms := observability.Milliseconds(elapsed)
	observability.LogEvaluate(e.cfg.logger, name, v.String(), ms)
	if slow {
		observability.LogSlowEvaluation(e.cfg.logger, name, ms, observability.Milliseconds(e.cfg.slowThreshold))
	}
	return v, nil
}
