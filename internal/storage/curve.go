// Package storage reads reaction curves from CSV and writes traces and
// run reports to disk.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidlab/internal/process"
)

// baselineSamples bounds the number of leading and trailing input samples
// averaged when the step is derived from an input column.
const baselineSamples = 50

var ErrNoData = errors.New("no data rows")

// CurveOptions control how a CSV file is turned into a reaction curve.
type CurveOptions struct {
	// StepMagnitude overrides the step derived from the input column.
	// Zero means derive it.
	StepMagnitude float64
	// InitialOutput overrides the pre-step output level when set.
	InitialOutput *float64
}

// ReadCurve parses time,output[,input] rows. A leading header row is
// skipped when its first field is not numeric.
func ReadCurve(r io.Reader, opts CurveOptions) (process.ReactionCurve, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return process.ReactionCurve{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && !numeric(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return process.ReactionCurve{}, ErrNoData
	}

	width := len(records[0])
	if width < 2 {
		return process.ReactionCurve{}, fmt.Errorf("line 1: want at least 2 columns, got %d", width)
	}
	times := make([]float64, 0, len(records))
	outputs := make([]float64, 0, len(records))
	var inputs []float64
	if width >= 3 {
		inputs = make([]float64, 0, len(records))
	}

	for i, rec := range records {
		if len(rec) < width {
			return process.ReactionCurve{}, fmt.Errorf("row %d: want %d columns, got %d", i+1, width, len(rec))
		}
		t, err := parseField(rec[0], i, "time")
		if err != nil {
			return process.ReactionCurve{}, err
		}
		y, err := parseField(rec[1], i, "output")
		if err != nil {
			return process.ReactionCurve{}, err
		}
		times = append(times, t)
		outputs = append(outputs, y)
		if inputs != nil {
			u, err := parseField(rec[2], i, "input")
			if err != nil {
				return process.ReactionCurve{}, err
			}
			inputs = append(inputs, u)
		}
	}

	curve := process.ReactionCurve{
		Times:         times,
		Outputs:       outputs,
		StepMagnitude: opts.StepMagnitude,
		InitialOutput: outputs[0],
		StepTime:      times[0],
	}
	if inputs != nil {
		deriveStep(&curve, inputs, opts.StepMagnitude == 0)
	}
	if opts.InitialOutput != nil {
		curve.InitialOutput = *opts.InitialOutput
	}
	if err := curve.Validate(); err != nil {
		return process.ReactionCurve{}, err
	}
	return curve, nil
}

// deriveStep locates the step in the input column and takes the pre-step
// output level from the samples before it.
func deriveStep(c *process.ReactionCurve, inputs []float64, setMagnitude bool) {
	n := min(baselineSamples, max(1, len(inputs)/4))
	u0 := stat.Mean(inputs[:n], nil)
	u1 := stat.Mean(inputs[len(inputs)-n:], nil)
	du := u1 - u0
	if setMagnitude {
		c.StepMagnitude = du
	}
	if du == 0 {
		return
	}

	k := 0
	for i, u := range inputs {
		if math.Abs(u-u0) >= 0.5*math.Abs(du) {
			k = i
			break
		}
	}
	c.StepTime = c.Times[k]
	if k > 0 {
		c.InitialOutput = stat.Mean(c.Outputs[max(0, k-baselineSamples):k], nil)
	}
}

func numeric(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	return err == nil
}

func parseField(s string, row int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: bad %s %q: %w", row+1, name, s, err)
	}
	return v, nil
}

func LoadCurve(path string, opts CurveOptions) (process.ReactionCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return process.ReactionCurve{}, err
	}
	defer f.Close()
	return ReadCurve(f, opts)
}

// WriteCurve emits time,output rows with a header.
func WriteCurve(w io.Writer, c process.ReactionCurve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "output"}); err != nil {
		return err
	}
	for i := range c.Times {
		if err := cw.Write([]string{formatFloat(c.Times[i]), formatFloat(c.Outputs[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func SaveCurve(path string, c process.ReactionCurve) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCurve(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
