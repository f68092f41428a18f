package proximity

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shenikar/crowd_proximity_engine/internal/geo"
)

// ErrInvalidRadius возвращается для отрицательного или нечислового радиуса
var ErrInvalidRadius = errors.New("invalid radius")

// Candidate - представление записи с координатами, по которому ведется ранжирование
type Candidate struct {
	// Key - идентификатор записи, последний ключ сортировки
	Key string
	// Location - nil, если у записи нет координат
	Location   *geo.Coordinate
	Category   string
	Priority   string
	Labels     map[string]string
	Attributes map[string]float64
	RecordedAt time.Time
}

// Located реализуют записи, которые можно ранжировать по расстоянию
type Located interface {
	Candidate() Candidate
}

// AttributeOrder - дополнительный ключ сортировки по числовому атрибуту
type AttributeOrder struct {
	Attribute  string
	Descending bool
}

// Query описывает отбор, сортировку и пагинацию
type Query struct {
	Filter    Filter
	Reference *geo.Coordinate
	RadiusKm  *float64
	// PriorityOrder - метки приоритета от старшей к младшей; не перечисленные идут последними
	PriorityOrder []string
	TieBreak      *AttributeOrder
	Skip          int
	// Limit < 0 снимает ограничение, Limit == 0 дает пустую страницу
	Limit int
}

// Result - запись и расстояние до точки отсчета, если оно вычислялось
type Result[T any] struct {
	Item       T
	DistanceKm *float64
}

type ranked[T any] struct {
	item      T
	cand      Candidate
	distance  *float64
	priorityN int
}

// Rank отбирает, сортирует и постранично отдает кандидатов.
// Порядок: приоритет, расстояние (без расстояния - в конце), атрибут TieBreak,
// свежесть RecordedAt по убыванию, Key.
func Rank[T Located](items []T, q Query) ([]Result[T], error) {
	if q.Reference != nil {
		if err := q.Reference.Validate(); err != nil {
			return nil, err
		}
	}
	if q.RadiusKm != nil && (*q.RadiusKm < 0 || math.IsNaN(*q.RadiusKm)) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, *q.RadiusKm)
	}

	priorities := make(map[string]int, len(q.PriorityOrder))
	for i, p := range q.PriorityOrder {
		key := strings.ToLower(p)
		if _, seen := priorities[key]; !seen {
			priorities[key] = i
		}
	}

	survivors := make([]ranked[T], 0, len(items))
	for _, item := range items {
		cand := item.Candidate()
		if !q.Filter.Matches(cand) {
			continue
		}

		var distance *float64
		if q.Reference != nil && cand.Location != nil {
			d := geo.DistanceKm(*q.Reference, *cand.Location)
			distance = &d
		}
		if q.Reference != nil && q.RadiusKm != nil {
			if distance == nil || *distance > *q.RadiusKm {
				continue
			}
		}

		priorityN := 0
		if len(priorities) > 0 {
			n, ok := priorities[strings.ToLower(cand.Priority)]
			if !ok {
				n = len(q.PriorityOrder)
			}
			priorityN = n
		}

		survivors = append(survivors, ranked[T]{item: item, cand: cand, distance: distance, priorityN: priorityN})
	}

	slices.SortStableFunc(survivors, func(a, b ranked[T]) int {
		if c := cmp.Compare(a.priorityN, b.priorityN); c != 0 {
			return c
		}
		if c := compareOptional(a.distance, b.distance); c != 0 {
			return c
		}
		if q.TieBreak != nil {
			if c := compareAttribute(a.cand, b.cand, *q.TieBreak); c != 0 {
				return c
			}
		}
		if c := b.cand.RecordedAt.Compare(a.cand.RecordedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.cand.Key, b.cand.Key)
	})

	page := paginate(survivors, q.Skip, q.Limit)
	results := make([]Result[T], 0, len(page))
	for _, r := range page {
		results = append(results, Result[T]{Item: r.item, DistanceKm: r.distance})
	}
	return results, nil
}

// compareOptional сравнивает по возрастанию; nil больше любого значения
func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func compareAttribute(a, b Candidate, order AttributeOrder) int {
	av, aok := a.Attributes[order.Attribute]
	bv, bok := b.Attributes[order.Attribute]
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	if order.Descending {
		return cmp.Compare(bv, av)
	}
	return cmp.Compare(av, bv)
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
