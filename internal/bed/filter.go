package bed

import "math"

// biquad is a direct-form-1 two-pole filter. Coefficients follow the
// usual RBJ cookbook formulas.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *biquad) apply(samples []float64) {
	for i, s := range samples {
		samples[i] = f.process(s)
	}
}

func newHighPass(rate int, freq, q float64) *biquad {
	w0 := 2 * math.Pi * freq / float64(rate)
	alpha := math.Sin(w0) / (2 * q)
	cosw := math.Cos(w0)
	a0 := 1 + alpha
	return &biquad{
		b0: (1 + cosw) / 2 / a0,
		b1: -(1 + cosw) / a0,
		b2: (1 + cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

func newLowPass(rate int, freq, q float64) *biquad {
	w0 := 2 * math.Pi * freq / float64(rate)
	alpha := math.Sin(w0) / (2 * q)
	cosw := math.Cos(w0)
	a0 := 1 + alpha
	return &biquad{
		b0: (1 - cosw) / 2 / a0,
		b1: (1 - cosw) / a0,
		b2: (1 - cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

func newHighShelf(rate int, freq, gainDB float64) *biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / float64(rate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / 2 * math.Sqrt2
	a0 := (a + 1) - (a-1)*cosw + 2*math.Sqrt(a)*alpha
	return &biquad{
		b0: a * ((a + 1) + (a-1)*cosw + 2*math.Sqrt(a)*alpha) / a0,
		b1: -2 * a * ((a - 1) + (a+1)*cosw) / a0,
		b2: a * ((a + 1) + (a-1)*cosw - 2*math.Sqrt(a)*alpha) / a0,
		a1: 2 * ((a - 1) - (a+1)*cosw) / a0,
		a2: ((a + 1) - (a-1)*cosw - 2*math.Sqrt(a)*alpha) / a0,
	}
}
