package audio

import (
	"math"
	"math/rand"
	"testing"
)

func timeRange(from int64, n int, sampleRate float64) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(from+int64(i)) / sampleRate
	}
	return times
}

func TestSineIsBounded(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	times := make([]float64, 4096)
	for i := range times {
		times[i] = r.Float64() * 100
	}
	out := make([]float64, len(times))
	for _, freq := range []float64{0, 1, 27.5, 440, 4186.01, 12543.85} {
		sineWave(freq, times, out)
		for i, v := range out {
			if v < -1 || v > 1 {
				t.Fatalf("sine(%v, %v) = %v is out of [-1, 1]", freq, times[i], v)
			}
		}
	}
}

func TestPhaseContinuity(t *testing.T) {
	const n = 37
	const sampleRate = 48000.0
	for _, kind := range []int{waveSine, waveSaw, waveSquare} {
		whole := make([]float64, 2*n)
		generateWave(kind, 440, timeRange(0, 2*n, sampleRate), whole)

		first := make([]float64, n)
		second := make([]float64, n)
		generateWave(kind, 440, timeRange(0, n, sampleRate), first)
		generateWave(kind, 440, timeRange(n, n, sampleRate), second)

		for i := 0; i < n; i++ {
			expectEqual(t, first[i], whole[i])
			expectEqual(t, second[i], whole[n+i])
		}
	}
}

func TestSawWave(t *testing.T) {
	out := make([]float64, 5)
	sawWave(1, []float64{0, 0.5, 1, 1.5, 2}, out)
	expectNearlyEqual(t, out[0], -1)
	expectNearlyEqual(t, out[1], -0.5)
	expectNearlyEqual(t, out[2], 0)
	expectNearlyEqual(t, out[3], 0.5)
	expectNearlyEqual(t, out[4], -1)
}

func TestSquareWave(t *testing.T) {
	out := make([]float64, 5)
	squareWave(1, []float64{0, 0.5, 1, 1.5, 2}, out)
	expectEqual(t, out[0], -1.0)
	expectEqual(t, out[1], -1.0)
	// the zero crossing counts as positive
	expectEqual(t, out[2], 1.0)
	expectEqual(t, out[3], 1.0)
	expectEqual(t, out[4], -1.0)
}

func TestWaveKindFromString(t *testing.T) {
	expectEqual(t, waveKindFromString("sine"), waveSine)
	expectEqual(t, waveKindFromString("saw"), waveSaw)
	expectEqual(t, waveKindFromString(" Square "), waveSquare)
	expectEqual(t, waveKindFromString("triangle"), waveSine)
	expectEqual(t, waveKindFromString(""), waveSine)
	expectEqual(t, waveKindToString(waveSaw), "saw")
	expectEqual(t, waveKindToString(42), "sine")
	expectEqual(t, isWaveKind("triangle"), false)
}

func TestNoteToFreq(t *testing.T) {
	expectNearlyEqual(t, noteToFreq(69), 440)
	expectNearlyEqual(t, noteToFreq(81), 880)
	expectNearlyEqual(t, noteToFreq(57), 220)
	expectNearlyEqual(t, noteToFreq(60), 261.6256)
}

func TestFloorMod(t *testing.T) {
	expectNearlyEqual(t, floorMod(3.5, 2), 1.5)
	expectNearlyEqual(t, floorMod(-0.5, 2), 1.5)
	if math.IsNaN(floorMod(0, 2)) {
		t.Errorf("floorMod(0, 2) is NaN")
	}
}
