package problem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

const (
	maxLineBytes    = 1 << 20
	maxDeliveryHint = 1024
)

// Parse reads a problem file.
//
// The first non-blank line is "<pizzas> <teams of 2> <teams of 3> <teams of 4>";
// the pizza count is ignored. Every further non-blank line describes one pizza
// as "<n> <ingredient 1> ... <ingredient n>", and pizza ids follow line order
// starting at zero.
func Parse(r io.Reader) (*Problem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	b := NewBuilder()
	header := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if !header {
			if err := parseHeader(b, fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			header = true
			continue
		}

		count, err := parseCount(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: ingredient count: %w", lineNo, err)
		}
		if count != len(fields)-1 {
			return nil, fmt.Errorf("line %d: %w: declared %d ingredients, found %d", lineNo, ErrMalformedInput, count, len(fields)-1)
		}
		b.AddPizza(fields[1:]...)
	}
	if err := scanErr(scanner, lineNo); err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}
	if !header {
		return nil, fmt.Errorf("%w: missing header line", ErrMalformedInput)
	}

	return b.Build(), nil
}

func parseHeader(b *Builder, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%w: header needs 4 fields, found %d", ErrMalformedInput, len(fields))
	}
	for i, size := range []int{2, 3, 4} {
		teams, err := parseCount(fields[i+1])
		if err != nil {
			return fmt.Errorf("teams of %d: %w", size, err)
		}
		b.SetQuota(size, teams)
	}
	return nil
}

func parseCount(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrMalformedInput, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrMalformedInput, value)
	}
	return value, nil
}

// WriteSolution writes the solution in the submission format: the delivery
// count on the first line, then one "<team size> <pizza id>..." line per delivery.
func WriteSolution(w io.Writer, s Solution) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", len(s.Deliveries)); err != nil {
		return err
	}
	for _, d := range s.Deliveries {
		if _, err := bw.WriteString(strconv.Itoa(d.TeamSize)); err != nil {
			return err
		}
		for _, id := range d.PizzaIDs {
			if _, err := fmt.Fprintf(bw, " %d", id); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseSolution reads a solution written by WriteSolution. Declared team
// sizes are kept as written even when they disagree with the id count, so
// the result can still be checked for validity.
func ParseSolution(r io.Reader) (Solution, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		sol      Solution
		declared = -1
		lineNo   = 0
	)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if declared < 0 {
			count, err := parseCount(fields[0])
			if err != nil {
				return Solution{}, fmt.Errorf("line %d: delivery count: %w", lineNo, err)
			}
			declared = count
			sol.Deliveries = make([]Delivery, 0, min(count, maxDeliveryHint))
			continue
		}

		size, err := parseCount(fields[0])
		if err != nil {
			return Solution{}, fmt.Errorf("line %d: team size: %w", lineNo, err)
		}
		ids := make([]int, 0, len(fields)-1)
		for _, raw := range fields[1:] {
			id, err := parseCount(raw)
			if err != nil {
				return Solution{}, fmt.Errorf("line %d: pizza id: %w", lineNo, err)
			}
			ids = append(ids, id)
		}
		sol.Deliveries = append(sol.Deliveries, Delivery{TeamSize: size, PizzaIDs: ids})
	}
	if err := scanErr(scanner, lineNo); err != nil {
		return Solution{}, fmt.Errorf("read solution: %w", err)
	}
	if declared < 0 {
		return Solution{}, fmt.Errorf("%w: missing delivery count", ErrMalformedInput)
	}
	if declared != len(sol.Deliveries) {
		return Solution{}, fmt.Errorf("%w: declared %d deliveries, found %d", ErrMalformedInput, declared, len(sol.Deliveries))
	}
	return sol, nil
}

// Normalize returns a copy of the solution with every delivery's pizza ids sorted.
func Normalize(s Solution) Solution {
	out := Solution{Deliveries: make([]Delivery, len(s.Deliveries))}
	for i, d := range s.Deliveries {
		ids := slices.Clone(d.PizzaIDs)
		slices.Sort(ids)
		out.Deliveries[i] = Delivery{TeamSize: d.TeamSize, PizzaIDs: ids}
	}
	return out
}

// scanErr reports an overlong line as malformed input. lineNo is the last
// line scanned successfully.
func scanErr(scanner *bufio.Scanner, lineNo int) error {
	err := scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return fmt.Errorf("line %d: %w: line exceeds %d bytes", lineNo+1, ErrMalformedInput, maxLineBytes)
	}
	return err
}
