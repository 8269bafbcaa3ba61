package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/swingsim/internal/sim"
)

var ErrMalformedLog = errors.New("storage: malformed trajectory log")

const headerPrefix = "#"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteLog writes a trajectory log: a parameter header line followed by a
// CSV table with one row per sample.
func WriteLog(w io.Writer, p sim.Params, traj *sim.Trajectory) error {
	values := p.Values()
	pairs := make([]string, len(sim.ParamKeys))
	for i, key := range sim.ParamKeys {
		pairs[i] = key + "=" + formatFloat(values[key])
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", headerPrefix, strings.Join(pairs, ", ")); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(sim.Columns); err != nil {
		return err
	}
	row := make([]string, len(sim.Columns))
	for i := 0; i < traj.Len(); i++ {
		for j, v := range traj.At(i).Row() {
			row[j] = formatFloat(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadLog parses a log written by WriteLog. The trajectory's step is taken
// from the first two timestamps.
func ReadLog(r io.Reader) (map[string]float64, *sim.Trajectory, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, nil, fmt.Errorf("%w: missing header", ErrMalformedLog)
	}
	params, err := parseHeader(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(sim.Columns)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedLog, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: missing column header", ErrMalformedLog)
	}
	for i, name := range sim.Columns {
		if records[0][i] != name {
			return nil, nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformedLog, i, records[0][i], name)
		}
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	values := make([]float64, len(sim.Columns))
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: row %d: %v", ErrMalformedLog, i+1, err)
			}
			values[j] = v
		}
		s, err := sim.SampleFromRow(values)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %v", ErrMalformedLog, i+1, err)
		}
		samples = append(samples, s)
	}

	dt := 0.0
	if len(samples) > 1 {
		dt = samples[1].Time - samples[0].Time
	}
	return params, sim.NewTrajectory(dt, samples), nil
}

func parseHeader(line string) (map[string]float64, error) {
	if !strings.HasPrefix(line, headerPrefix) {
		return nil, fmt.Errorf("%w: header must start with %q", ErrMalformedLog, headerPrefix)
	}
	params := make(map[string]float64)
	body := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix))
	if body == "" {
		return params, nil
	}
	for _, pair := range strings.Split(body, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: bad header entry %q", ErrMalformedLog, pair)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: header %s: %v", ErrMalformedLog, key, err)
		}
		params[key] = v
	}
	return params, nil
}
