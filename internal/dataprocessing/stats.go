package dataprocessing

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quantile returns the q-th quantile of sorted values using linear
// interpolation between the closest ranks (h = q*(n-1)), as pandas does. It returns NaN for
// an empty input.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lerp(sorted[lo], sorted[hi], pos-float64(lo))
}

// lerp interpolates from a to b, anchoring on b when t >= 0.5 so the result
// matches numpy bit for bit.
func lerp(a, b, t float64) float64 {
	diff := b - a
	// explicit conversions keep the products from being fused into an FMA
	if t >= 0.5 {
		return b - float64(diff*(1-t))
	}
	return a + float64(diff*t)
}

// NumberSummary holds the descriptive statistics of a numeric sample
type NumberSummary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// DescribeNumbers summarizes vals. Std is the sample standard deviation and is
// NaN for fewer than two values; every statistic is NaN for an empty sample.
func DescribeNumbers(vals []float64) NumberSummary {
	if len(vals) == 0 {
		nan := math.NaN()
		return NumberSummary{Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	std := math.NaN()
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}

	return NumberSummary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Std:    std,
		Min:    floats.Min(sorted),
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Max:    floats.Max(sorted),
	}
}

// TimeSummary holds the descriptive statistics of a time sample
type TimeSummary struct {
	Count  int
	Mean   time.Time
	Min    time.Time
	Q1     time.Time
	Median time.Time
	Q3     time.Time
	Max    time.Time
}

// DescribeTimes summarizes times on their Unix timestamps in seconds
func DescribeTimes(times []time.Time) TimeSummary {
	if len(times) == 0 {
		return TimeSummary{}
	}

	secs := make([]float64, len(times))
	for i, t := range times {
		secs[i] = float64(t.Unix()) + float64(t.Nanosecond())/1e9
	}
	s := DescribeNumbers(secs)

	at := func(v float64) time.Time {
		whole := math.Floor(v)
		return time.Unix(int64(whole), int64(math.Round((v-whole)*1e9))).UTC()
	}

	return TimeSummary{
		Count:  s.Count,
		Mean:   at(s.Mean),
		Min:    at(s.Min),
		Q1:     at(s.Q1),
		Median: at(s.Median),
		Q3:     at(s.Q3),
		Max:    at(s.Max),
	}
}

// TextSummary holds the descriptive statistics of a text sample
type TextSummary struct {
	Count  int
	Unique int
	Top    string
	Freq   int
}

// DescribeTexts counts distinct values; Top is the most frequent value, the
// first one seen on ties.
func DescribeTexts(texts []string) TextSummary {
	counts := ValueCounts(texts)
	s := TextSummary{Count: len(texts), Unique: len(counts)}
	if len(counts) > 0 {
		s.Top = counts[0].Label
		s.Freq = counts[0].Count
	}
	return s
}

// LabelCount is one entry of a frequency table
type LabelCount struct {
	Label string
	Count int
}

// ValueCounts returns the frequency of each distinct value, most frequent
// first; ties keep first-seen order.
func ValueCounts(values []string) []LabelCount {
	index := make(map[string]int)
	var counts []LabelCount
	for _, v := range values {
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, LabelCount{Label: v, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// LabelMean is one entry of a grouped mean
type LabelMean struct {
	Label string
	Mean  float64
}

// GroupMeans averages the present values of a number column per distinct
// present value of a text column, in first-seen group order. Rows where either
// cell is missing are ignored.
func GroupMeans(key, value *Column) []LabelMean {
	index := make(map[string]int)
	var labels []string
	var samples [][]float64

	for i, k := range key.Cells {
		v := value.Cells[i]
		if !k.Valid || !v.Valid {
			continue
		}
		label := cellLabel(key.Kind, k)
		gi, ok := index[label]
		if !ok {
			gi = len(samples)
			index[label] = gi
			labels = append(labels, label)
			samples = append(samples, nil)
		}
		samples[gi] = append(samples[gi], v.Num)
	}

	means := make([]LabelMean, len(samples))
	for i, sample := range samples {
		means[i] = LabelMean{Label: labels[i], Mean: stat.Mean(sample, nil)}
	}
	return means
}

// cellLabel renders a present cell as a group label
func cellLabel(kind Kind, c Cell) string {
	switch kind {
	case KindNumber:
		return formatNumber(c.Num)
	case KindTime:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return c.Text
	}
}
