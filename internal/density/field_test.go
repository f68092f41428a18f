package density

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccumulator_InvalidViewport(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		radius        float64
	}{
		{"zero width", 0, 300, 20},
		{"negative height", 400, -1, 20},
		{"zero radius", 400, 300, 0},
		{"nan radius", 400, 300, math.NaN()},
		{"inf radius", 400, 300, math.Inf(1)},
		{"radius above limit", 400, 300, MaxKernelRadius + 1},
		{"too many cells", 4096, 4096, 20},
		{"product overflows int", 1 << 32, 1 << 32, 1},
		{"max int width", math.MaxInt, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAccumulator(tt.width, tt.height, tt.radius)
			assert.ErrorIs(t, err, ErrInvalidViewport)
		})
	}
}

func TestNewAccumulator_LargestAllowedGrid(t *testing.T) {
	acc, err := NewAccumulator(2048, 2048, MaxKernelRadius)
	require.NoError(t, err)
	assert.Empty(t, acc.Fold([]Observation{{X: 2047, Y: 2047}}))
	assert.Equal(t, 1, acc.Accepted())
}

func TestAccumulate_SingleObservationPeakAndMass(t *testing.T) {
	field, dropped, err := Accumulate([]Observation{{X: 200, Y: 150}}, 400, 300, 20, DefaultSigma)
	require.NoError(t, err)
	require.Empty(t, dropped)

	x, y := field.Peak()
	assert.Equal(t, 200, x)
	assert.Equal(t, 150, y)

	// Масса конуса 1 - d/r примерно pi*r^2/3; сглаживание с отражением массу сохраняет
	assert.InDelta(t, math.Pi*20*20/3, field.Sum(), 15)
	assert.Less(t, field.Max(), 1.0)
	assert.Greater(t, field.Max(), 0.0)
}

func TestAccumulate_MassScalesWithWeight(t *testing.T) {
	single, _, err := Accumulate([]Observation{{X: 100, Y: 100, Weight: 1}}, 400, 300, 20, DefaultSigma)
	require.NoError(t, err)
	double, _, err := Accumulate([]Observation{{X: 100, Y: 100, Weight: 2}}, 400, 300, 20, DefaultSigma)
	require.NoError(t, err)

	assert.InDelta(t, 2*single.Sum(), double.Sum(), 1e-6)
	assert.InDelta(t, 2*single.Max(), double.Max(), 1e-9)
}

func TestAccumulate_UnsmoothedPeakIsOne(t *testing.T) {
	field, _, err := Accumulate([]Observation{{X: 10, Y: 20}}, 50, 50, 5, 0)
	require.NoError(t, err)

	assert.Equal(t, 1.0, field.At(10, 20))
	assert.InDelta(t, 0.8, field.At(11, 20), 1e-12)
	assert.Equal(t, 0.0, field.At(16, 20))
	assert.Equal(t, 0.0, field.At(-1, 20))
}

func TestAccumulate_OverlappingObservationsSum(t *testing.T) {
	one, _, err := Accumulate([]Observation{{X: 50, Y: 50}}, 100, 100, 10, 0)
	require.NoError(t, err)
	two, _, err := Accumulate([]Observation{{X: 50, Y: 50}, {X: 50, Y: 50}}, 100, 100, 10, 0)
	require.NoError(t, err)

	assert.Equal(t, 2*one.At(50, 50), two.At(50, 50))
}

func TestAccumulate_OrderIndependent(t *testing.T) {
	o1 := Observation{X: 120, Y: 80}
	o2 := Observation{X: 130.5, Y: 95.25, Weight: 1.5}
	o3 := Observation{X: 300, Y: 200}

	split, err := NewAccumulator(400, 300, 20)
	require.NoError(t, err)
	split.Fold([]Observation{o1, o2})
	split.Fold([]Observation{o3})

	whole, err := NewAccumulator(400, 300, 20)
	require.NoError(t, err)
	whole.Fold([]Observation{o3, o1, o2})

	a, b := split.Smooth(DefaultSigma), whole.Smooth(DefaultSigma)
	for y := 0; y < 300; y += 7 {
		for x := 0; x < 400; x += 7 {
			assert.InDelta(t, a.At(x, y), b.At(x, y), 1e-12)
		}
	}
	assert.Equal(t, 3, split.Accepted())
	assert.Equal(t, whole.TotalWeight(), split.TotalWeight())
}

func TestAccumulate_DropsMalformedObservations(t *testing.T) {
	observations := []Observation{
		{X: 10, Y: 10},
		{X: 10, Y: 10, Weight: -1},
		{X: 400, Y: 10},
		{X: 10, Y: -0.5},
		{X: math.NaN(), Y: 10},
		{X: 20, Y: 20, Weight: 3},
		{X: 10, Y: 10, Weight: MaxWeight + 1},
		{X: 10, Y: 10, Weight: 1e308},
		{X: 10, Y: 10, Weight: math.Inf(1)},
	}

	acc, err := NewAccumulator(400, 300, 20)
	require.NoError(t, err)
	dropped := acc.Fold(observations)

	require.Len(t, dropped, 7)
	for _, e := range dropped {
		assert.ErrorIs(t, e, ErrMalformedObservation)
	}
	assert.Equal(t, 2, acc.Accepted())
	assert.Equal(t, 4.0, acc.TotalWeight())
}

func TestAccumulator_SmoothDoesNotMutate(t *testing.T) {
	acc, err := NewAccumulator(40, 30, 5)
	require.NoError(t, err)
	acc.Fold([]Observation{{X: 20, Y: 15}})

	raw := acc.Smooth(0)
	_ = acc.Smooth(DefaultSigma)
	again := acc.Smooth(0)

	assert.Equal(t, raw.Rows(), again.Rows())
	assert.Equal(t, 1.0, raw.At(20, 15))
}

func TestField_Statistics(t *testing.T) {
	empty, _, err := Accumulate(nil, 20, 10, 3, DefaultSigma)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Max())
	assert.Equal(t, 0.0, empty.MeanNonZero())
	assert.Equal(t, 20, empty.Width())
	assert.Equal(t, 10, empty.Height())

	field, _, err := Accumulate([]Observation{{X: 5, Y: 5}}, 20, 10, 2, 0)
	require.NoError(t, err)
	// Ячейки внутри радиуса 2: центр 1, 4 соседа 0.5, диагонали 1 - sqrt(2)/2
	diag := 1 - math.Sqrt2/2
	assert.InDelta(t, 1+4*0.5+4*diag, field.Sum(), 1e-12)
	assert.InDelta(t, (1+4*0.5+4*diag)/9, field.MeanNonZero(), 1e-12)
	assert.Len(t, field.Rows(), 10)
	assert.Len(t, field.Rows()[0], 20)
}

func TestReflect(t *testing.T) {
	assert.Equal(t, 0, reflect(-1, 3))
	assert.Equal(t, 1, reflect(-2, 3))
	assert.Equal(t, 2, reflect(3, 3))
	assert.Equal(t, 0, reflect(5, 3))
	assert.Equal(t, 1, reflect(1, 3))
	assert.Equal(t, 0, reflect(-40, 1))
}

func TestGaussianKernelNormalized(t *testing.T) {
	kernel := gaussianKernel(DefaultSigma)
	assert.Len(t, kernel, 2*32+1)
	sum := 0.0
	for _, v := range kernel {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Equal(t, kernel[0], kernel[len(kernel)-1])
}
