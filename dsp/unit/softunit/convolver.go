package softunit

import (
	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/stemstation/audiocore/dsp/unit"
)

// directThreshold selects time-domain convolution for short impulses.
const directThreshold = 128

// partSize is the uniform partition length for FFT convolution. Frequency
// blocks use 2*partSize so linear convolution fits without wraparound.
const partSize = 4096

// convolverUnit convolves the signal with an impulse response. Short
// impulses run in the time domain; longer ones use uniformly partitioned
// overlap-add with a frequency-domain delay line, which adds partSize
// samples of buffering latency.
type convolverUnit struct {
	ir []float64

	// direct path
	history []float64
	histPos int

	// partitioned path
	plan      *algofft.Plan[complex128]
	irSpectra [][]complex128
	fdl       [][]complex128
	fdlPos    int
	overlap   []float64
	inBlock   []float64
	inFill    int
	outFIFO   []float64

	scratch []complex128
	specAcc []complex128
	timeOut []complex128
}

// NewConvolver creates a convolver for the given impulse response.
// An empty impulse response passes the signal through unchanged.
func (e *Environment) NewConvolver(ir []float64) unit.Convolver {
	c := &convolverUnit{}
	c.SetImpulse(ir)
	e.register(c)

	return c
}

func (c *convolverUnit) ImpulseLen() int { return len(c.ir) }

// SetImpulse replaces the impulse response and clears all signal history.
func (c *convolverUnit) SetImpulse(ir []float64) {
	c.ir = append([]float64(nil), ir...)

	c.plan = nil
	c.irSpectra = nil
	c.fdl = nil
	c.history = nil
	c.outFIFO = nil
	c.inFill = 0
	c.fdlPos = 0
	c.histPos = 0

	switch {
	case len(c.ir) == 0:
	case len(c.ir) <= directThreshold:
		c.history = make([]float64, len(c.ir))
	default:
		c.initPartitioned()
	}
}

func (c *convolverUnit) initPartitioned() {
	fftSize := 2 * partSize

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		// Power-of-two sizes always plan; fall back to direct if not.
		c.history = make([]float64, len(c.ir))

		return
	}

	c.plan = plan

	parts := (len(c.ir) + partSize - 1) / partSize
	c.irSpectra = make([][]complex128, parts)
	c.fdl = make([][]complex128, parts)
	c.scratch = make([]complex128, fftSize)
	c.specAcc = make([]complex128, fftSize)
	c.timeOut = make([]complex128, fftSize)
	c.overlap = make([]float64, partSize)
	c.inBlock = make([]float64, partSize)

	for p := range c.irSpectra {
		start := p * partSize
		end := min(start+partSize, len(c.ir))

		for i := range c.scratch {
			c.scratch[i] = 0
		}

		for i, v := range c.ir[start:end] {
			c.scratch[i] = complex(v, 0)
		}

		spec := make([]complex128, fftSize)
		if err := c.plan.Forward(spec, c.scratch); err != nil {
			c.plan = nil
			c.history = make([]float64, len(c.ir))

			return
		}

		c.irSpectra[p] = spec
		c.fdl[p] = make([]complex128, fftSize)
	}
}

func (c *convolverUnit) Render(dst, src []float64) {
	switch {
	case len(c.ir) == 0:
		copy(dst, src)
	case c.plan == nil:
		c.renderDirect(dst, src)
	default:
		c.renderPartitioned(dst, src)
	}
}

func (c *convolverUnit) renderDirect(dst, src []float64) {
	n := len(c.history)

	for i, x := range src {
		c.history[c.histPos] = x

		var acc float64

		pos := c.histPos
		for _, h := range c.ir {
			acc += h * c.history[pos]

			pos--
			if pos < 0 {
				pos = n - 1
			}
		}

		dst[i] = acc

		c.histPos = (c.histPos + 1) % n
	}
}

func (c *convolverUnit) renderPartitioned(dst, src []float64) {
	for i, x := range src {
		c.inBlock[c.inFill] = x
		c.inFill++

		if c.inFill == partSize {
			c.processPartition()
			c.inFill = 0
		}

		if len(c.outFIFO) > 0 {
			dst[i] = c.outFIFO[0]
			c.outFIFO = c.outFIFO[1:]
		} else {
			dst[i] = 0
		}
	}
}

// processPartition convolves one full input partition and appends partSize
// output samples to the FIFO.
func (c *convolverUnit) processPartition() {
	fftSize := 2 * partSize

	for i := range c.scratch {
		c.scratch[i] = 0
	}

	for i, v := range c.inBlock {
		c.scratch[i] = complex(v, 0)
	}

	head := c.fdl[c.fdlPos]
	if err := c.plan.Forward(head, c.scratch); err != nil {
		return
	}

	for i := range c.specAcc {
		c.specAcc[i] = 0
	}

	for p, irSpec := range c.irSpectra {
		block := c.fdl[(c.fdlPos-p+len(c.fdl))%len(c.fdl)]
		for i := 0; i < fftSize; i++ {
			c.specAcc[i] += block[i] * irSpec[i]
		}
	}

	if err := c.plan.Inverse(c.timeOut, c.specAcc); err != nil {
		return
	}

	for i := 0; i < partSize; i++ {
		c.outFIFO = append(c.outFIFO, real(c.timeOut[i])+c.overlap[i])
		c.overlap[i] = real(c.timeOut[partSize+i])
	}

	c.fdlPos = (c.fdlPos + 1) % len(c.fdl)
}

func (c *convolverUnit) Reset() {
	for i := range c.history {
		c.history[i] = 0
	}

	c.histPos = 0

	for _, block := range c.fdl {
		for i := range block {
			block[i] = 0
		}
	}

	for i := range c.overlap {
		c.overlap[i] = 0
	}

	c.fdlPos = 0
	c.inFill = 0
	c.outFIFO = nil
}
