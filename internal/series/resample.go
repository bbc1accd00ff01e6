package series

import (
	"fmt"

	"LeverageGauge/internal/model"
)

// Weekly keeps the last point of every ISO-8601 week.
func Weekly(daily model.Series) model.Series {
	return lastPerBucket(daily, func(p model.Point) (string, bool) {
		t, ok := p.Time()
		if !ok {
			return "", false
		}
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), true
	})
}

// Monthly keeps the last point of every calendar month.
func Monthly(daily model.Series) model.Series {
	return lastPerBucket(daily, func(p model.Point) (string, bool) {
		if len(p.Date) < 7 {
			return "", false
		}
		return p.Date[:7], true
	})
}

// lastPerBucket does one pass over a date-ascending series, replacing the
// tail of the output while consecutive points share a bucket.
func lastPerBucket(in model.Series, bucket func(model.Point) (string, bool)) model.Series {
	out := make(model.Series, 0, len(in)/4+1)
	prev := ""
	for _, p := range in {
		key, ok := bucket(p)
		if !ok {
			continue
		}
		if len(out) > 0 && key == prev {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
		prev = key
	}
	return out
}
