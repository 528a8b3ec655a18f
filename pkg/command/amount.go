package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AmountMode says how an Amount combines with the current value.
type AmountMode int

const (
	AmountSet AmountMode = iota
	AmountAdd
	AmountSub
	AmountMax
)

// Amount is a numeric parameter that may be absolute ("5"), relative
// ("+=5", "-=5", "+5") or the MAX sentinel.
type Amount struct {
	Mode  AmountMode
	Value float64
}

// ParseAmount reads the amount syntax. A bare negative number is an
// absolute value; only "-=" subtracts.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "max") {
		return Amount{Mode: AmountMax}, nil
	}
	mode := AmountSet
	switch {
	case strings.HasPrefix(s, "+="):
		mode, s = AmountAdd, s[2:]
	case strings.HasPrefix(s, "-="):
		mode, s = AmountSub, s[2:]
	case strings.HasPrefix(s, "+"):
		mode, s = AmountAdd, s[1:]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if mode != AmountSet && v < 0 {
		return Amount{}, fmt.Errorf("relative amount must not be negative: %q", s)
	}
	return Amount{Mode: mode, Value: v}, nil
}

// Resolve returns the new value given the current one. ceiling is used for
// the MAX sentinel; a negative ceiling leaves the current value unchanged.
func (a Amount) Resolve(current, ceiling int) int {
	n := roundInt(a.Value)
	switch a.Mode {
	case AmountAdd:
		return addSat(current, n)
	case AmountSub:
		return addSat(current, -max(n, -math.MaxInt))
	case AmountMax:
		if ceiling < 0 {
			return current
		}
		return ceiling
	}
	return n
}

// roundInt rounds f to the nearest int, saturating at the int range.
func roundInt(f float64) int {
	f = math.Round(f)
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// addSat adds without wrapping.
func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

func (a Amount) String() string {
	v := strconv.FormatFloat(a.Value, 'f', -1, 64)
	switch a.Mode {
	case AmountAdd:
		return "+=" + v
	case AmountSub:
		return "-=" + v
	case AmountMax:
		return "MAX"
	}
	return v
}
