package density

import "math"

// truncate - ядро обрезается на 4 сигмах
const truncate = 4.0

func gaussianKernel(sigma float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect отражает индекс за границей: (d c b a | a b c d | d c b a)
func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i - 1
	}
	return i
}

// gaussianFilter - раздельная свертка: сначала строки, затем столбцы
func gaussianFilter(cells []float64, width, height int, sigma float64) {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	line := make([]float64, max(width, height))

	for y := 0; y < height; y++ {
		row := cells[y*width : (y+1)*width]
		copy(line, row)
		for x := 0; x < width; x++ {
			acc := 0.0
			for k, w := range kernel {
				acc += w * line[reflect(x+k-radius, width)]
			}
			row[x] = acc
		}
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			line[y] = cells[y*width+x]
		}
		for y := 0; y < height; y++ {
			acc := 0.0
			for k, w := range kernel {
				acc += w * line[reflect(y+k-radius, height)]
			}
			cells[y*width+x] = acc
		}
	}
}
