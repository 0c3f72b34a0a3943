package audio

import (
	"math"
	"strings"
)

// ----- Wave Kind ----- //

const (
	waveSine = iota
	waveSaw
	waveSquare
)

var waveKindNames = []string{"sine", "saw", "square"}

// waveKindFromString falls back to sine for anything it does not know, so a
// bad setting can never reach the render path as an error.
func waveKindFromString(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range waveKindNames {
		if name == s {
			return kind
		}
	}
	return waveSine
}

func waveKindToString(kind int) string {
	if kind < 0 || kind >= len(waveKindNames) {
		return waveKindNames[waveSine]
	}
	return waveKindNames[kind]
}

func isWaveKind(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, name := range waveKindNames {
		if name == s {
			return true
		}
	}
	return false
}

// ----- OSC ----- //

// All oscillators are pure functions of absolute time. out must be at least as
// long as times.

func sineWave(freq float64, times []float64, out []float64) {
	for i, t := range times {
		out[i] = math.Sin(2.0 * math.Pi * freq * t)
	}
}

func sawWave(freq float64, times []float64, out []float64) {
	for i, t := range times {
		out[i] = floorMod(freq*t, 2.0) - 1.0
	}
}

// sign(0) is treated as +1 so the square never outputs silence.
func squareWave(freq float64, times []float64, out []float64) {
	for i, t := range times {
		if floorMod(freq*t, 2.0)-1.0 >= 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
}

func generateWave(kind int, freq float64, times []float64, out []float64) {
	switch kind {
	case waveSaw:
		sawWave(freq, times, out)
	case waveSquare:
		squareWave(freq, times, out)
	default:
		sineWave(freq, times, out)
	}
}

// floorMod has the sign of b, like the % operator of most array libraries.
func floorMod(a float64, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		m += b
	}
	return m
}

func noteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(note-69)/12)
}
