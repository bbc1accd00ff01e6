// Package series turns raw provider payloads into ordered point sequences
// and downsamples them to weekly and monthly granularity.
package series

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"LeverageGauge/internal/model"
)

// closeFields are tried in order when a dated entry is an object.
var closeFields = []string{"4. close", "close", "5. adjusted close", "value"}

// Normalize walks path inside payload to a date-keyed map and converts it
// into a Series. A missing or malformed payload yields an empty Series.
// Entries with an invalid date or unparsable value are skipped.
func Normalize(payload map[string]interface{}, path ...string) model.Series {
	if payload == nil {
		return model.Series{}
	}
	var node interface{} = payload
	for _, key := range path {
		obj, ok := node.(map[string]interface{})
		if !ok {
			return model.Series{}
		}
		node, ok = obj[key]
		if !ok {
			return model.Series{}
		}
	}
	dated, ok := node.(map[string]interface{})
	if !ok {
		return model.Series{}
	}

	points := make([]model.Point, 0, len(dated))
	for d, raw := range dated {
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			continue
		}
		v, ok := entryValue(raw)
		if !ok {
			continue
		}
		points = append(points, model.Point{Date: d, Value: v})
	}
	return FromPoints(points)
}

func entryValue(v interface{}) (float64, bool) {
	switch e := v.(type) {
	case map[string]interface{}:
		for _, f := range closeFields {
			if raw, ok := e[f]; ok {
				return scalar(raw)
			}
		}
		return 0, false
	default:
		return scalar(v)
	}
}

func scalar(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// FromPoints sorts points by date and removes duplicates. When two points
// share a date the later one in the input wins. YYYY-MM-DD dates sort
// lexicographically in date order.
func FromPoints(points []model.Point) model.Series {
	idx := make(map[string]int, len(points))
	out := make(model.Series, 0, len(points))
	for _, p := range points {
		if i, ok := idx[p.Date]; ok {
			out[i] = p
			continue
		}
		idx[p.Date] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
