package stack

import (
	"math"
	"slices"
)

// applyOrder returns series indices in stacking order, bottom first.
func applyOrder(o Order, values [][]float64) []int {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	switch o {
	case OrderAscending:
		sums := seriesSums(values)
		slices.SortStableFunc(order, func(a, b int) int { return compareFloat(sums[a], sums[b]) })
	case OrderDescending:
		sums := seriesSums(values)
		slices.SortStableFunc(order, func(a, b int) int { return compareFloat(sums[a], sums[b]) })
		slices.Reverse(order)
	case OrderInsideOut:
		order = insideOut(values)
	case OrderReverse:
		slices.Reverse(order)
	}
	return order
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func seriesSums(values [][]float64) []float64 {
	sums := make([]float64, len(values))
	for i, row := range values {
		for _, v := range row {
			sums[i] += v
		}
	}
	return sums
}

// insideOut sorts series by the index of their peak and alternates them
// between the top and the bottom of the stack, keeping the stack balanced.
func insideOut(values [][]float64) []int {
	n := len(values)
	peaks := make([]int, n)
	for i, row := range values {
		best := math.Inf(-1)
		for j, v := range row {
			if v > best {
				best, peaks[i] = v, j
			}
		}
	}
	sums := seriesSums(values)

	byPeak := make([]int, n)
	for i := range byPeak {
		byPeak[i] = i
	}
	slices.SortStableFunc(byPeak, func(a, b int) int { return peaks[a] - peaks[b] })

	var top, bottom float64
	var tops, bottoms []int
	for _, i := range byPeak {
		if top < bottom {
			top += sums[i]
			tops = append(tops, i)
		} else {
			bottom += sums[i]
			bottoms = append(bottoms, i)
		}
	}
	slices.Reverse(bottoms)
	return append(bottoms, tops...)
}

// applyOffset computes [low, high] per series (indexed like values) and
// category.
func applyOffset(o Offset, values [][]float64, order []int) [][][2]float64 {
	n, m := len(values), len(values[0])
	bounds := make([][][2]float64, n)
	for i := range bounds {
		bounds[i] = make([][2]float64, m)
	}

	switch o {
	case OffsetDiverging:
		for j := 0; j < m; j++ {
			var pos, neg float64
			for _, i := range order {
				switch v := values[i][j]; {
				case v > 0:
					bounds[i][j] = [2]float64{pos, pos + v}
					pos += v
				case v < 0:
					bounds[i][j] = [2]float64{neg + v, neg}
					neg += v
				default:
					bounds[i][j] = [2]float64{0, 0}
				}
			}
		}
		return bounds

	case OffsetExpand:
		scaled := make([][]float64, n)
		for i := range scaled {
			scaled[i] = slices.Clone(values[i])
		}
		for j := 0; j < m; j++ {
			var total float64
			for i := 0; i < n; i++ {
				total += values[i][j]
			}
			if total == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				scaled[i][j] /= total
			}
		}
		stackFrom(bounds, scaled, order, make([]float64, m))
		return bounds

	case OffsetSilhouette:
		base := make([]float64, m)
		for j := 0; j < m; j++ {
			var total float64
			for i := 0; i < n; i++ {
				total += values[i][j]
			}
			base[j] = -total / 2
		}
		stackFrom(bounds, values, order, base)
		return bounds

	case OffsetWiggle:
		stackFrom(bounds, values, order, wiggleBaseline(values, order))
		return bounds

	default:
		stackFrom(bounds, values, order, make([]float64, m))
		return bounds
	}
}

// stackFrom stacks series in order on top of each other starting at base.
func stackFrom(bounds [][][2]float64, values [][]float64, order []int, base []float64) {
	for j := range base {
		y := base[j]
		for _, i := range order {
			v := values[i][j]
			bounds[i][j] = [2]float64{y, y + v}
			y += v
		}
	}
}

// wiggleBaseline minimizes the weighted wiggle of the layers: the baseline
// at each category moves against the weighted mean slope change.
func wiggleBaseline(values [][]float64, order []int) []float64 {
	m := len(values[0])
	base := make([]float64, m)
	y := 0.0
	for j := 1; j < m; j++ {
		var s1, s2 float64
		for pos, i := range order {
			cur, prev := values[i][j], values[i][j-1]
			s3 := (cur - prev) / 2
			for _, k := range order[:pos] {
				s3 += values[k][j] - values[k][j-1]
			}
			s1 += cur
			s2 += s3 * cur
		}
		if s1 != 0 {
			y -= s2 / s1
		}
		base[j] = y
	}
	return base
}
