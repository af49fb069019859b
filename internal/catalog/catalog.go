// Package catalog reads arrival picks from ISC bulletin CSV exports.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRecord is returned for a row that cannot be decoded.
var ErrMalformedRecord = errors.New("catalog: malformed record")

// field positions in an ISC arrivals row
const (
	colEventID   = 0
	colReporter  = 1
	colStation   = 2
	colStaLat    = 3
	colStaLon    = 4
	colStaElev   = 5
	colDistance  = 7
	colBackAzi   = 8
	colPhase     = 9
	colPickDate  = 11
	colPickTime  = 12
	colEventDate = 18
	colEventTime = 19
	colEventLat  = 20
	colEventLon  = 21
	colDepth     = 22

	minFields = colDepth + 1
)

// Pick is one phase arrival reported at a station for an event.
type Pick struct {
	EventID    string
	Reporter   string
	Station    string
	StationLat float64
	StationLon float64
	// StationElev is in metres.
	StationElev float64
	// Distance is the reported epicentral distance in degrees.
	Distance    float64
	BackAzimuth float64
	Phase       string
	PickTime    time.Time
	EventTime   time.Time
	EventLat    float64
	EventLon    float64
	// EventDepth is in kilometres.
	EventDepth float64
}

// Key identifies the event, station and reporter of a pick.
func (p Pick) Key() string {
	return p.EventID + p.Station + p.Reporter
}

// Picks holds picks by phase, then by Key. A reporter that reports the same
// phase at the same station more than once keeps only the last row.
type Picks map[string]map[string]Pick

// ReadPicks decodes every row of r and keeps those whose phase is listed in
// phases. Every listed phase has an entry in the result, possibly empty.
func ReadPicks(r io.Reader, phases []string) (Picks, error) {
	picks := make(Picks, len(phases))
	for _, ph := range phases {
		picks[ph] = map[string]Pick{}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRecord, row, err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		p, err := parsePick(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRecord, row, err)
		}
		if byKey, ok := picks[p.Phase]; ok {
			byKey[p.Key()] = p
		}
	}
	return picks, nil
}

func parsePick(fields []string) (Pick, error) {
	if len(fields) < minFields {
		return Pick{}, fmt.Errorf("%d fields, want at least %d", len(fields), minFields)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	p := Pick{
		EventID:  fields[colEventID],
		Reporter: fields[colReporter],
		Station:  fields[colStation],
		Phase:    fields[colPhase],
	}

	var err error
	floats := []struct {
		col int
		dst *float64
	}{
		{colStaLat, &p.StationLat},
		{colStaLon, &p.StationLon},
		{colStaElev, &p.StationElev},
		{colDistance, &p.Distance},
		{colBackAzi, &p.BackAzimuth},
		{colEventLat, &p.EventLat},
		{colEventLon, &p.EventLon},
		{colDepth, &p.EventDepth},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(fields[f.col], 64); err != nil {
			return Pick{}, fmt.Errorf("column %d: %w", f.col, err)
		}
	}
	if p.PickTime, err = parseDateTime(fields[colPickDate], fields[colPickTime]); err != nil {
		return Pick{}, fmt.Errorf("pick time: %w", err)
	}
	if p.EventTime, err = parseDateTime(fields[colEventDate], fields[colEventTime]); err != nil {
		return Pick{}, fmt.Errorf("event time: %w", err)
	}
	return p, nil
}

// parseDateTime reads "YYYY-MM-DD" and "hh:mm:ss[.ff]" as UTC. The bulletin
// reports hundredths of a second; the seconds fraction may also be absent.
func parseDateTime(date, clock string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, err
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return time.Time{}, fmt.Errorf("time %q is not hh:mm:ss", clock)
	}
	hour, err := strconv.Atoi(hms[0])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := strconv.Atoi(hms[1])
	if err != nil {
		return time.Time{}, err
	}
	secs, frac, _ := strings.Cut(hms[2], ".")
	sec, err := strconv.Atoi(secs)
	if err != nil {
		return time.Time{}, err
	}
	var usec int
	if frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		if usec, err = strconv.Atoi(frac); err != nil {
			return time.Time{}, err
		}
		for n := len(frac); n < 6; n++ {
			usec *= 10
		}
	}
	if hour > 23 || minute > 59 || sec > 60 {
		return time.Time{}, fmt.Errorf("time %q out of range", clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, sec,
		usec*int(time.Microsecond), time.UTC), nil
}

// Pair joins the picks of two phases for the same event, station and reporter.
// Event and station fields come from the first phase.
type Pair struct {
	Pick
	Phase1Time time.Time
	Phase2Time time.Time
}

// Differential returns the second phase arrival minus the first.
func (p Pair) Differential() time.Duration {
	return p.Phase2Time.Sub(p.Phase1Time)
}

// PairPicks returns a pair for every key with a pick of both phases, sorted
// by key.
func PairPicks(picks Picks, phase1, phase2 string) []Pair {
	first, second := picks[phase1], picks[phase2]
	keys := make([]string, 0, len(first))
	for k := range first {
		if _, ok := second[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		p1, p2 := first[k], second[k]
		pairs = append(pairs, Pair{
			Pick:       p1,
			Phase1Time: p1.PickTime,
			Phase2Time: p2.PickTime,
		})
	}
	return pairs
}
