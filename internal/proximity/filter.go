package proximity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPredicate возвращается при разборе некорректного предиката атрибута
var ErrInvalidPredicate = errors.New("invalid attribute predicate")

// Op - оператор сравнения числового атрибута
type Op string

const (
	OpGT  Op = "gt"
	OpGTE Op = "gte"
	OpLT  Op = "lt"
	OpLTE Op = "lte"
	OpEQ  Op = "eq"
	OpNE  Op = "ne"
)

// Predicate - условие на числовой атрибут, например available_capacity > 0
type Predicate struct {
	Attribute string
	Op        Op
	Value     float64
}

// ParsePredicate разбирает строку вида "available_capacity:gt:0"
func ParsePredicate(raw string) (Predicate, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] == "" {
		return Predicate{}, fmt.Errorf("%w: %q, expected attribute:op:value", ErrInvalidPredicate, raw)
	}
	op := Op(strings.ToLower(parts[1]))
	switch op {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpNE:
	default:
		return Predicate{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidPredicate, parts[1])
	}
	value, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: value %q is not a number", ErrInvalidPredicate, parts[2])
	}
	return Predicate{Attribute: parts[0], Op: op, Value: value}, nil
}

// Holds проверяет предикат. Отсутствующий атрибут условию не удовлетворяет.
func (p Predicate) Holds(attrs map[string]float64) bool {
	v, ok := attrs[p.Attribute]
	if !ok {
		return false
	}
	switch p.Op {
	case OpGT:
		return v > p.Value
	case OpGTE:
		return v >= p.Value
	case OpLT:
		return v < p.Value
	case OpLTE:
		return v <= p.Value
	case OpEQ:
		return v == p.Value
	case OpNE:
		return v != p.Value
	}
	return false
}

// Filter - набор условий отбора. Пустые поля не ограничивают выборку.
type Filter struct {
	Category   string
	Labels     map[string]string
	Predicates []Predicate
	// Match - произвольное дополнительное условие
	Match func(Candidate) bool
}

// Matches возвращает true, если кандидат удовлетворяет всем заданным условиям
func (f Filter) Matches(c Candidate) bool {
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	for key, want := range f.Labels {
		if c.Labels[key] != want {
			return false
		}
	}
	for _, p := range f.Predicates {
		if !p.Holds(c.Attributes) {
			return false
		}
	}
	if f.Match != nil && !f.Match(c) {
		return false
	}
	return true
}
