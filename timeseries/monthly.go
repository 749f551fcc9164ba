package timeseries

import (
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"
)

// MonthStart returns midnight UTC on the first day of t's calendar month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month start n calendar months after t's month.
func AddMonths(t time.Time, n int) time.Time {
	m := MonthStart(t)
	return time.Date(m.Year(), m.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween counts calendar months from a's month to b's month, inclusive.
func MonthsBetween(a, b time.Time) int {
	a, b = MonthStart(a), MonthStart(b)
	return (b.Year()-a.Year())*12 + int(b.Month()-a.Month()) + 1
}

// ReplaceInf returns a copy with +Inf and -Inf replaced by NaN.
func (s *Series) ReplaceInf() *Series {
	out := s.Copy()
	for i, v := range out.Values {
		if math.IsInf(v, 0) {
			out.Values[i] = math.NaN()
		}
	}
	return out
}

// ForwardFill returns a copy where each NaN takes the nearest preceding
// non-NaN value. Leading NaNs stay NaN.
func (s *Series) ForwardFill() *Series {
	out := s.Copy()
	last := math.NaN()
	for i, v := range out.Values {
		if math.IsNaN(v) {
			out.Values[i] = last
			continue
		}
		last = v
	}
	return out
}

// BackwardFill returns a copy where each NaN takes the nearest following
// non-NaN value. Trailing NaNs stay NaN.
func (s *Series) BackwardFill() *Series {
	out := s.Copy()
	next := math.NaN()
	for i := len(out.Values) - 1; i >= 0; i-- {
		if math.IsNaN(out.Values[i]) {
			out.Values[i] = next
			continue
		}
		next = out.Values[i]
	}
	return out
}

// TrimNaN drops NaN entries at both ends of the series.
func (s *Series) TrimNaN() *Series {
	start, end := 0, len(s.Values)
	for start < end && math.IsNaN(s.Values[start]) {
		start++
	}
	for end > start && math.IsNaN(s.Values[end-1]) {
		end--
	}
	if start == end {
		return Empty(s.Name)
	}
	return s.Slice(start, end)
}

// ResampleMonthlyMean buckets a date-sorted series by calendar month and
// averages the non-NaN values of each bucket. The result holds one entry for
// every month between the first and last observation; months without a
// usable observation are NaN.
func (s *Series) ResampleMonthlyMean() *Series {
	if len(s.Values) == 0 || len(s.Timestamps) != len(s.Values) {
		return Empty(s.Name)
	}

	first := MonthStart(s.Timestamps[0])
	n := MonthsBetween(first, s.Timestamps[len(s.Timestamps)-1])
	if n <= 0 {
		return Empty(s.Name)
	}

	buckets := make([]mstats.Float64Data, n)
	for i, ts := range s.Timestamps {
		v := s.Values[i]
		if math.IsNaN(v) {
			continue
		}
		idx := MonthsBetween(first, ts) - 1
		if idx < 0 || idx >= n {
			continue
		}
		buckets[idx] = append(buckets[idx], v)
	}

	timestamps := make([]time.Time, n)
	values := make([]float64, n)
	for i := range buckets {
		timestamps[i] = AddMonths(first, i)
		mean, err := mstats.Mean(buckets[i])
		if err != nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = mean
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}
