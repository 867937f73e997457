package sim

// DelayLine is a fixed-length FIFO on the control signal. Push returns the
// value pushed len(buf) calls earlier, or zero until the line has filled.
// A zero-length line passes values straight through.
type DelayLine struct {
	buf  []float64
	head int
}

// NewDelayLine uses buf as storage; its contents are zeroed.
func NewDelayLine(buf []float64) *DelayLine {
	for i := range buf {
		buf[i] = 0
	}
	return &DelayLine{buf: buf}
}

func (d *DelayLine) Len() int { return len(d.buf) }

func (d *DelayLine) Push(u float64) float64 {
	if len(d.buf) == 0 {
		return u
	}
	out := d.buf[d.head]
	d.buf[d.head] = u
	d.head++
	if d.head == len(d.buf) {
		d.head = 0
	}
	return out
}
