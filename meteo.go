// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

// Upper-air sounding (Meteo A) table: parsing, checksum validation and height interpolation.

package gotraj

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// One row of a sounding table
type Measurement struct {
	Height        float64 // [m]
	Temperature   float64 // [degC]
	WindDirection float64 // Azimuth / 100
	WindVelocity  float64 // [m/s]
	Checksum      float64 // Digit sum check value of the row
}

// Recompute the row checksum from the parsed values
func (m Measurement) ChecksumOK() bool {
	sum := digitSum(m.Height) + digitSum(m.Temperature) + digitSum(m.WindDirection) + digitSum(m.WindVelocity)
	return checksumMatches(sum, m.Checksum)
}

func (m Measurement) String() string {
	return fmt.Sprintf("h=%.1f t=%.2f dir=%.2f vel=%.2f", m.Height, m.Temperature, m.WindDirection, m.WindVelocity)
}

// Sounding holds validated measurements sorted ascending by height.
// It is immutable after construction. An invalid Sounding keeps no measurements.
type Sounding struct {
	meas []Measurement
	err  error
}

// NewSounding builds a Sounding from raw table cells.
// Cells may be string, float64, float32, int or int64. An optional header row is removed
// and the placeholder "//" is read as 0 in every row.
// Parse errors, checksum mismatches and duplicate heights invalidate the whole table.
func NewSounding(rows [][]any) *Sounding {
	meas, err := parseMeteo(rows)
	if err != nil {
		PrintD(1, "meteo data rejected: %s\n", err.Error())
		return &Sounding{err: fmt.Errorf("%w: %w", ErrInvalidSounding, err)}
	}
	return &Sounding{meas: meas}
}

// NewSoundingStrings is NewSounding for tables read as text (e.g. encoding/csv)
func NewSoundingStrings(rows [][]string) *Sounding {
	cells := make([][]any, len(rows))
	for i, row := range rows {
		cells[i] = make([]any, len(row))
		for j, c := range row {
			cells[i][j] = c
		}
	}
	return NewSounding(cells)
}

// Whether the table passed all checks and has data
func (s *Sounding) Valid() bool {
	return s != nil && s.err == nil && len(s.meas) > 0
}

// Reason for rejection, nil when valid
func (s *Sounding) Err() error {
	if s == nil {
		return fmt.Errorf("%w: no data", ErrInvalidSounding)
	}
	if s.err == nil && len(s.meas) == 0 {
		return fmt.Errorf("%w: no data rows", ErrInvalidSounding)
	}
	return s.err
}

// Human readable diagnosis, empty when valid
func (s *Sounding) Diagnosis() string {
	if err := s.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// Copy of the measurements in ascending height order
func (s *Sounding) Measurements() []Measurement {
	if s == nil {
		return nil
	}
	return slices.Clone(s.meas)
}

func (s *Sounding) Len() int {
	if s == nil {
		return 0
	}
	return len(s.meas)
}

// Interpolate returns the measurement fields at height h.
// Below the lowest or above the highest sample the outermost pair is extrapolated.
// An exact sample height returns the sample unchanged.
func (s *Sounding) Interpolate(h float64) (Measurement, error) {
	if !s.Valid() {
		return Measurement{}, s.Err()
	}
	n := len(s.meas)
	if n < 2 {
		return Measurement{}, fmt.Errorf("%w: %d measurement(s), need 2", ErrInterpolationRange, n)
	}

	i, found := slices.BinarySearchFunc(s.meas, h, func(m Measurement, t float64) int {
		return cmp.Compare(m.Height, t)
	})
	if found {
		return s.meas[i], nil
	}

	// Bracketing pair
	lo, up := i-1, i
	switch {
	case i == 0:
		lo, up = 0, 1
	case i == n:
		lo, up = n-2, n-1
	}
	return lerpMeasurement(s.meas[lo], s.meas[up], h)
}

func lerpMeasurement(a, b Measurement, h float64) (Measurement, error) {
	span := b.Height - a.Height
	if span == 0 {
		return Measurement{}, fmt.Errorf("%w: zero height span at %.1f m", ErrInterpolationRange, a.Height)
	}
	r := (h - a.Height) / span
	return Measurement{
		Height:        h,
		Temperature:   a.Temperature + (b.Temperature-a.Temperature)*r,
		WindDirection: a.WindDirection + (b.WindDirection-a.WindDirection)*r,
		WindVelocity:  a.WindVelocity + (b.WindVelocity-a.WindVelocity)*r,
	}, nil
}

// ------------------------------------
// Table parsing
// ------------------------------------

func parseMeteo(rows [][]any) ([]Measurement, error) {
	if len(rows) > 0 && isHeader(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	meas := make([]Measurement, 0, len(rows))
	for i, row := range rows {
		if len(row) != MeteoCols {
			return nil, fmt.Errorf("row %d: %d columns, want %d", i+1, len(row), MeteoCols)
		}
		var v [MeteoCols]float64
		for j, c := range row {
			f, err := parseCell(c)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i+1, j+1, err)
			}
			v[j] = f
		}
		m := Measurement{
			Height:        v[0],
			Temperature:   v[1],
			WindDirection: v[2],
			WindVelocity:  v[3],
			Checksum:      v[4],
		}
		if !m.ChecksumOK() {
			return nil, fmt.Errorf("checksum mismatch at height %g m (row %d)", m.Height, i+1)
		}
		PrintD(3, "meteo row %2d: %s\n", i+1, m)
		meas = append(meas, m)
	}

	slices.SortFunc(meas, func(a, b Measurement) int {
		return cmp.Compare(a.Height, b.Height)
	})
	for i := 1; i < len(meas); i++ {
		if meas[i].Height == meas[i-1].Height {
			return nil, fmt.Errorf("duplicate height %g m", meas[i].Height)
		}
	}
	return meas, nil
}

// A leading row is a header when its first cell is text that is neither a number nor the placeholder
func isHeader(row []any) bool {
	if len(row) == 0 {
		return false
	}
	s, ok := row[0].(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	if s == MeteoPlaceholder {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err != nil
}

func parseCell(c any) (float64, error) {
	f, err := cellValue(c)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", c)
	}
	return f, nil
}

func cellValue(c any) (float64, error) {
	switch v := c.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == MeteoPlaceholder {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported cell type %T", c)
	}
}

// Sum of the decimal digits of x. Sign and decimal point are ignored.
func digitSum(x float64) int {
	sum := 0
	for _, r := range strconv.FormatFloat(x, 'f', -1, 64) {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	return sum
}

// The low-order digits of sum (as many as the check value has) must equal the check value
func checksumMatches(sum int, check float64) bool {
	c := int(math.Trunc(check))
	if c < 0 {
		return false
	}
	mod := 10
	for mod <= c {
		mod *= 10
	}
	return sum%mod == c
}
