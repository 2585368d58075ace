// Package dsp implements the numeric primitives of the effects chain:
// a direct-form-I biquad section and the cookbook coefficient
// derivations for the band shapes the equalizer supports.
package dsp

// Biquad is a stateful second-order IIR filter section, direct-form I:
//
//	y[n] = a0*x[n] + a1*x[n-1] + a2*x[n-2] - a3*y[n-1] - a4*y[n-2]
//
// Coefficients are pre-normalized (b0,b1,b2,a1,a2 all divided by the
// raw a0 from the filter design equations), so Process never divides.
// State persists across calls for the life of the Biquad; replacing
// coefficients never resets x1,x2,y1,y2.
type Biquad struct {
	a0, a1, a2, a3, a4 float32
	x1, x2, y1, y2     float32
}

// Coefficients is the five-value normalized coefficient set a Biquad runs.
type Coefficients struct {
	A0, A1, A2, A3, A4 float32
}

// NewBiquad returns a Biquad with identity coefficients (passthrough)
// and zeroed state.
func NewBiquad() *Biquad {
	return &Biquad{a0: 1}
}

// SetCoefficients replaces the filter's running coefficients without
// touching x1,x2,y1,y2. Doing otherwise would click on every edit.
func (b *Biquad) SetCoefficients(c Coefficients) {
	b.a0, b.a1, b.a2, b.a3, b.a4 = c.A0, c.A1, c.A2, c.A3, c.A4
}

// Coefficients returns the filter's current coefficient set.
func (b *Biquad) Coefficients() Coefficients {
	return Coefficients{b.a0, b.a1, b.a2, b.a3, b.a4}
}

// Reset zeroes the filter's internal state, leaving coefficients untouched.
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

// Process runs the filter in place over buf, one sample at a time,
// hoisting coefficients and state into locals so the loop body touches
// only registers and the slice. Allocation-free.
func (b *Biquad) Process(buf []float32) {
	a0, a1, a2, a3, a4 := b.a0, b.a1, b.a2, b.a3, b.a4
	x1, x2, y1, y2 := b.x1, b.x2, b.y1, b.y2

	for i, x0 := range buf {
		y0 := a0*x0 + a1*x1 + a2*x2 - a3*y1 - a4*y2
		buf[i] = y0
		x2, x1 = x1, x0
		y2, y1 = y1, y0
	}

	b.x1, b.x2, b.y1, b.y2 = x1, x2, y1, y2
}
