// Package evaluation checks assignment solutions against their problem and
// computes their score. A solution must be valid before it is scored.
package evaluation
