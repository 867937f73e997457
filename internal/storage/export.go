package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
)

// WriteTrace emits time,output,control rows with a header.
func WriteTrace(w io.Writer, tr process.Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "output", "control"}); err != nil {
		return err
	}
	for i := range tr.Times {
		row := []string{formatFloat(tr.Times[i]), formatFloat(tr.Outputs[i]), ""}
		if i < len(tr.Controls) {
			row[2] = formatFloat(tr.Controls[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func SaveTrace(path string, tr process.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTrace(f, tr); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON encodes v indented.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Export writes report.json and one <rule>.csv trace per successful result
// into dir, creating it if needed. It returns the files written.
func Export(dir string, report *pipeline.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var written []string
	path := filepath.Join(dir, "report.json")
	if err := SaveJSON(path, report); err != nil {
		return written, fmt.Errorf("write report: %w", err)
	}
	written = append(written, path)

	for _, r := range report.Results {
		if !r.OK() || r.Trace.Len() == 0 {
			continue
		}
		path := filepath.Join(dir, traceFile(r.Rule))
		if err := SaveTrace(path, r.Trace); err != nil {
			return written, fmt.Errorf("write %s trace: %w", r.Rule, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func traceFile(rule string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, rule)
	return name + ".csv"
}
