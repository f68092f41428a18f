package risk

import (
	"math"

	"github.com/shenikar/crowd_proximity_engine/internal/density"
)

// Level - дискретный уровень риска
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Priority - рекомендуемая реакция оператора для уровня риска
type Priority string

const (
	PriorityNormal  Priority = "NORMAL"
	PriorityMonitor Priority = "MONITOR"
	PriorityUrgent  Priority = "URGENT"
)

// MaxScore - верхняя граница оценки
const MaxScore = 100.0

// Policy - веса линейной оценки и пороги уровней. Настраиваются под площадку.
type Policy struct {
	PeopleWeight      float64
	MaxDensityWeight  float64
	MeanDensityWeight float64
	HighThreshold     float64
	MediumThreshold   float64
}

// DefaultPolicy возвращает значения по умолчанию
func DefaultPolicy() Policy {
	return Policy{
		PeopleWeight:      3,
		MaxDensityWeight:  20,
		MeanDensityWeight: 10,
		HighThreshold:     70,
		MediumThreshold:   40,
	}
}

// Assessment - оценка риска по одной пачке обнаружений
type Assessment struct {
	Score                float64  `json:"score"`
	Level                Level    `json:"level"`
	Priority             Priority `json:"priority"`
	PeopleCount          int      `json:"people_count"`
	MaxCellValue         float64  `json:"max_density"`
	MeanNonZeroCellValue float64  `json:"mean_density"`
}

// Classifier переводит поле плотности и число людей в оценку риска
type Classifier struct {
	policy Policy
}

// NewClassifier создает классификатор с заданной политикой
func NewClassifier(policy Policy) *Classifier {
	return &Classifier{policy: policy}
}

// Policy возвращает текущую политику
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify вычисляет оценку, ограниченную [0, 100] и округленную до десятых
func (c *Classifier) Classify(peopleCount int, field *density.Field) Assessment {
	maxDensity := field.Max()
	meanDensity := field.MeanNonZero()
	return c.score(peopleCount, maxDensity, meanDensity)
}

func (c *Classifier) score(peopleCount int, maxDensity, meanDensity float64) Assessment {
	p := c.policy
	raw := float64(peopleCount)*p.PeopleWeight + maxDensity*p.MaxDensityWeight + meanDensity*p.MeanDensityWeight
	score := math.Round(clamp(raw, 0, MaxScore)*10) / 10

	a := Assessment{
		Score:                score,
		PeopleCount:          peopleCount,
		MaxCellValue:         maxDensity,
		MeanNonZeroCellValue: meanDensity,
	}
	a.Level, a.Priority = c.levelFor(score)
	return a
}

func (c *Classifier) levelFor(score float64) (Level, Priority) {
	switch {
	case score >= c.policy.HighThreshold:
		return LevelHigh, PriorityUrgent
	case score >= c.policy.MediumThreshold:
		return LevelMedium, PriorityMonitor
	default:
		return LevelLow, PriorityNormal
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
