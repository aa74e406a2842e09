/*
Package ruleexpr evaluates named rules written in a small predicate language.

# Overview

ruleexpr keeps business rules as data. A rule is an expression such as

	{age} >= 18 && {country} in ['US', 'CA']

written either in the textual grammar or as a JSON tree. Rules are compiled
once, optionally persisted to a store, and evaluated by name against a set
of parameters. The expression language itself lives in package expr; this
package adds named rules, persistence and observability around it.

# Basic Usage

	engine := ruleexpr.NewEngine()
	defer engine.Close()

	_, err := engine.AddRule(ctx, ruleset.Rule{
	    Name:   "adult",
	    Syntax: ruleset.SyntaxText,
	    Source: "{age} >= 18",
	})
	if err != nil {
	    return err
	}

	ok, err := engine.Match(ctx, "adult", expr.Params{"age": expr.FromInt(21)})

EvaluateMap accepts plain Go values and converts them with expr.ParamsOf:

	v, err := engine.EvaluateMap(ctx, "adult", map[string]any{"age": 21})

# Persistence

With a store, added rules survive restarts:

	store, err := ruleset.NewSQLiteStore("./rules.db")
	engine := ruleexpr.NewEngine(ruleexpr.WithStore(store))
	n, err := engine.Load(ctx) // compile everything already stored

Open does the same from a config.Settings, including rule files:

	s, _ := config.FromFile("ruleexpr.yaml")
	engine, err := ruleexpr.Open(ctx, s)

# Observability

Logging, metrics and tracing are off unless configured:

	engine := ruleexpr.NewEngine(
	    ruleexpr.WithLogger(slog.Default()),
	    ruleexpr.WithMetrics(observability.NewMetricsRecorder()),
	    ruleexpr.WithSpanManager(observability.NewSpanManager()),
	)

Each compile and evaluation gets a span, a metric sample and a debug log
line. Evaluation failures log at warn level since they usually come from
caller data rather than the rule.

# Errors

Evaluate wraps evaluation failures in *RuleError, which unwraps to the
expr sentinel errors:

	_, err := engine.Evaluate(ctx, "adult", expr.Params{})
	if errors.Is(err, expr.ErrInvalidParameter) {
	    // a parameter was missing
	}

Unknown rule names return ErrRuleNotFound and Match on a non-Bool result
returns ErrNotBool.
*/
package ruleexpr
