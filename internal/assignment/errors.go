package assignment

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientPizzas is returned when the pool runs out before a team size's quota is met.
	ErrInsufficientPizzas = errors.New("insufficient pizzas to fill team quota")
	// ErrInvalidQuota is returned when a quota names a non-positive team size or a negative team count.
	ErrInvalidQuota = errors.New("team sizes must be positive and team counts non-negative")
	// ErrUnknownStrategy is returned when an assignment strategy name is not recognised.
	ErrUnknownStrategy = errors.New("unknown assignment strategy")
	// ErrUnknownOverlapPolicy is returned when an overlap policy name is not recognised.
	ErrUnknownOverlapPolicy = errors.New("unknown overlap policy")
)

// ShortfallError reports the teams of one size that could not be formed.
// It matches ErrInsufficientPizzas with errors.Is.
type ShortfallError struct {
	TeamSize  int
	Requested int
	Missing   int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: %d of %d teams of %d not formed", ErrInsufficientPizzas, e.Missing, e.Requested, e.TeamSize)
}

func (e *ShortfallError) Unwrap() error {
	return ErrInsufficientPizzas
}

// Shortfalls extracts every ShortfallError from err, including errors joined with errors.Join.
func Shortfalls(err error) []*ShortfallError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*ShortfallError
		for _, inner := range joined.Unwrap() {
			out = append(out, Shortfalls(inner)...)
		}
		return out
	}
	var sf *ShortfallError
	if errors.As(err, &sf) {
		return []*ShortfallError{sf}
	}
	return nil
}
