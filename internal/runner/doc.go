// Package runner drives one assignment run end to end: it picks the
// configured engine, assigns pizzas to teams, checks the solution and scores
// it, and records the outcome in the service metrics. Both the HTTP service
// and the solver command go through it.
package runner
