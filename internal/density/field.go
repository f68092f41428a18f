package density

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidViewport - нулевые или отрицательные размеры поля либо радиус ядра
	ErrInvalidViewport = errors.New("invalid density viewport")
	// ErrMalformedObservation - вес вне [0, MaxWeight] или позиция вне поля
	ErrMalformedObservation = errors.New("malformed observation")
)

// DefaultSigma - сигма гауссова сглаживания по умолчанию, в ячейках сетки
const DefaultSigma = 8.0

const (
	// MaxCells - предел числа ячеек сетки (2048x2048)
	MaxCells = 1 << 22
	// MaxKernelRadius - предел радиуса ядра, в ячейках
	MaxKernelRadius = 100.0
	// MaxWeight - предел веса одного обнаружения
	MaxWeight = 1000.0
)

// Observation - одно обнаружение человека в координатах кадра
type Observation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Weight - вклад обнаружения; 0 означает значение по умолчанию 1.0
	Weight    float64    `json:"weight,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (o Observation) weight() float64 {
	if o.Weight == 0 {
		return 1.0
	}
	return o.Weight
}

// Accumulator складывает вклады обнаружений в сетку width x height.
// Вклады суммируются, поэтому порядок и разбиение на пачки не влияют на результат.
type Accumulator struct {
	width        int
	height       int
	kernelRadius float64
	cells        []float64
	accepted     int
	totalWeight  float64
}

// NewAccumulator создает пустую сетку заданного размера
func NewAccumulator(width, height int, kernelRadius float64) (*Accumulator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidViewport, width, height)
	}
	// деление вместо умножения: width*height может переполниться
	if width > MaxCells/height {
		return nil, fmt.Errorf("%w: size %dx%d exceeds %d cells", ErrInvalidViewport, width, height, MaxCells)
	}
	if !(kernelRadius > 0) || kernelRadius > MaxKernelRadius {
		return nil, fmt.Errorf("%w: kernel radius %v", ErrInvalidViewport, kernelRadius)
	}
	return &Accumulator{
		width:        width,
		height:       height,
		kernelRadius: kernelRadius,
		cells:        make([]float64, width*height),
	}, nil
}

// Fold добавляет пачку обнаружений. Некорректные обнаружения пропускаются,
// для каждого возвращается ошибка, обернутая в ErrMalformedObservation.
func (a *Accumulator) Fold(observations []Observation) []error {
	var dropped []error
	for i, o := range observations {
		if err := a.validate(o); err != nil {
			dropped = append(dropped, fmt.Errorf("observation %d: %w", i, err))
			continue
		}
		a.add(o)
	}
	return dropped
}

// Accepted - число принятых обнаружений
func (a *Accumulator) Accepted() int {
	return a.accepted
}

// TotalWeight - сумма весов принятых обнаружений
func (a *Accumulator) TotalWeight() float64 {
	return a.totalWeight
}

func (a *Accumulator) validate(o Observation) error {
	w := o.weight()
	if !(w >= 0 && w <= MaxWeight) {
		return fmt.Errorf("%w: weight %v", ErrMalformedObservation, o.Weight)
	}
	if math.IsNaN(o.X) || math.IsNaN(o.Y) ||
		o.X < 0 || o.Y < 0 || o.X >= float64(a.width) || o.Y >= float64(a.height) {
		return fmt.Errorf("%w: position (%v, %v) outside %dx%d", ErrMalformedObservation, o.X, o.Y, a.width, a.height)
	}
	return nil
}

// add распределяет вклад max(0, 1 - d/r) * weight по ячейкам в радиусе ядра
func (a *Accumulator) add(o Observation) {
	r := a.kernelRadius
	w := o.weight()

	xStart := max(0, int(math.Ceil(o.X-r)))
	xEnd := min(a.width-1, int(math.Floor(o.X+r)))
	yStart := max(0, int(math.Ceil(o.Y-r)))
	yEnd := min(a.height-1, int(math.Floor(o.Y+r)))

	for py := yStart; py <= yEnd; py++ {
		dy := float64(py) - o.Y
		row := py * a.width
		for px := xStart; px <= xEnd; px++ {
			dx := float64(px) - o.X
			d := math.Sqrt(dx*dx + dy*dy)
			if d > r {
				continue
			}
			a.cells[row+px] += math.Max(0, 1-d/r) * w
		}
	}
	a.accepted++
	a.totalWeight += w
}

// Smooth применяет гауссово сглаживание и возвращает неизменяемое поле.
// Сам аккумулятор не меняется. sigma <= 0 отключает сглаживание.
func (a *Accumulator) Smooth(sigma float64) *Field {
	cells := make([]float64, len(a.cells))
	copy(cells, a.cells)
	if sigma > 0 {
		gaussianFilter(cells, a.width, a.height, sigma)
	}
	return &Field{width: a.width, height: a.height, cells: cells}
}

// Accumulate строит сглаженное поле по одной пачке обнаружений
func Accumulate(observations []Observation, width, height int, kernelRadius, sigma float64) (*Field, []error, error) {
	acc, err := NewAccumulator(width, height, kernelRadius)
	if err != nil {
		return nil, nil, err
	}
	dropped := acc.Fold(observations)
	return acc.Smooth(sigma), dropped, nil
}

// Field - сглаженное поле плотности, только для чтения
type Field struct {
	width  int
	height int
	cells  []float64
}

func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }

// At возвращает значение ячейки; вне поля - 0
func (f *Field) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0
	}
	return f.cells[y*f.width+x]
}

// Max - максимальное значение поля
func (f *Field) Max() float64 {
	m := 0.0
	for _, v := range f.cells {
		if v > m {
			m = v
		}
	}
	return m
}

// MeanNonZero - среднее по ячейкам со значением > 0, 0 если таких нет
func (f *Field) MeanNonZero() float64 {
	sum, n := 0.0, 0
	for _, v := range f.cells {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Sum - суммарная масса поля
func (f *Field) Sum() float64 {
	sum := 0.0
	for _, v := range f.cells {
		sum += v
	}
	return sum
}

// Peak возвращает координаты ячейки с максимальным значением
func (f *Field) Peak() (x, y int) {
	best := -1.0
	for i, v := range f.cells {
		if v > best {
			best = v
			x, y = i%f.width, i/f.width
		}
	}
	return x, y
}

// Rows возвращает копию поля построчно, для отрисовки тепловой карты
func (f *Field) Rows() [][]float64 {
	rows := make([][]float64, f.height)
	for y := range rows {
		rows[y] = make([]float64, f.width)
		copy(rows[y], f.cells[y*f.width:(y+1)*f.width])
	}
	return rows
}
