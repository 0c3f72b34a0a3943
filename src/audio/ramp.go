package audio

// ----- Linear Ramp ----- //

// linearRamp fills out with len(out) evenly spaced values from start to end,
// both inclusive, clamped to [0, 1]. A single point is the start value.
func linearRamp(start float64, end float64, out []float64) {
	n := len(out)
	switch n {
	case 0:
		return
	case 1:
		out[0] = clamp01(start)
		return
	}
	step := (end - start) / float64(n-1)
	for i := 0; i < n-1; i++ {
		out[i] = clamp01(start + step*float64(i))
	}
	out[n-1] = clamp01(end)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
