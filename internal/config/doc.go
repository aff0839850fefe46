// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It covers the HTTP service settings, the
// assignment engine (strategy, score weights, overlap policy) and the run
// store, and validates the result before handing it to the rest of the
// application.
package config
