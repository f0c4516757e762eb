package charts

import (
	"math"
	"strings"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the series as a single line of block characters at most
// width runes wide. Points are averaged into equal buckets when there are more
// points than columns. A nil domain scales to the data.
func Sparkline(s Series, width int, domain *Domain) string {
	if width <= 0 || len(s.Points) == 0 {
		return ""
	}

	values := bucket(s.Points, width)

	lo, hi := 0.0, 0.0
	if domain != nil {
		lo, hi = domain.Min, domain.Max
	} else {
		lo, hi = math.MaxFloat64, -math.MaxFloat64
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkBlocks[clamp(idx, 0, top)])
	}
	return b.String()
}

func bucket(points []Point, width int) []float64 {
	if len(points) <= width {
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Y
		}
		return values
	}

	values := make([]float64, width)
	for i := range values {
		start := i * len(points) / width
		end := (i + 1) * len(points) / width
		sum := 0.0
		for _, p := range points[start:end] {
			sum += p.Y
		}
		values[i] = sum / float64(end-start)
	}
	return values
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
