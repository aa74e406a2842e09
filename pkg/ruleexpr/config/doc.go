/*
Package config loads engine settings from YAML or JSON files and the environment.

# Overview

Settings collects everything needed to build an engine: the nesting limit,
log level, whether metrics and tracing are recorded, where rules are
persisted and which rule files to load at startup.

# Loading

	s, err := config.FromFile("ruleexpr.yaml")
	if err != nil {
	    return err
	}
	if err := s.ApplyEnv(); err != nil {
	    return err
	}
	if err := s.Validate(); err != nil {
	    return err
	}

A settings file looks like:

	max_depth: 128
	log_level: debug
	metrics: true
	tracing: false
	slow_eval_threshold: 5ms
	rule_files:
	  - rules/pricing.yaml
	store:
	  driver: sqlite
	  path: ./rules.db

# Lenient Decoding

Keys are read leniently: a missing key or a value of the wrong type keeps
the default. max_depth: "deep" leaves MaxDepth at its default rather than
failing the load. Validate catches values that decode but make no sense.

# Environment

ApplyEnv overrides file values from:

	RULEEXPR_MAX_DEPTH     integer
	RULEEXPR_LOG_LEVEL     debug, info, warn or error
	RULEEXPR_STORE_DRIVER  memory, sqlite or bolt
	RULEEXPR_STORE_PATH    database path

Unlike file keys, a malformed environment value is an error.

# Stores

OpenStore builds the configured ruleset.Store. The memory driver needs no
path; sqlite and bolt require one.
*/
package config
