package recorder

import (
	"time"

	"LeverageGauge/internal/model"
)

// ScoreRecord is one evaluated refresh cycle.
type ScoreRecord struct {
	CycleID        string    `json:"cycle_id"`
	Timestamp      time.Time `json:"timestamp"`
	Score          int       `json:"score"`
	Raw            int       `json:"raw"`
	SafetyWarning  bool      `json:"safety_warning"`
	Price          float64   `json:"price"`
	TrendAverage   float64   `json:"trend_average"`
	RSI            float64   `json:"rsi"`
	Volatility     float64   `json:"volatility"`
	Breadth        float64   `json:"breadth"`
	ValuationRatio float64   `json:"valuation_ratio"`
	Synthetic      bool      `json:"synthetic"`
}

// NewScoreRecord flattens a scored dataset into a record. Unavailable
// readings are stored as zero.
func NewScoreRecord(ds *model.Dataset, r model.Readings, s *model.LeverageScore, at time.Time) *ScoreRecord {
	rec := &ScoreRecord{
		Timestamp:      at,
		Score:          s.Score,
		Raw:            s.Raw,
		SafetyWarning:  s.SafetyWarning,
		Price:          orZero(r.Price),
		TrendAverage:   orZero(r.TrendAverage),
		RSI:            orZero(r.RSI),
		Volatility:     orZero(r.Volatility),
		Breadth:        orZero(r.Breadth),
		ValuationRatio: orZero(r.ValuationRatio),
	}
	if ds != nil {
		rec.CycleID = ds.CycleID
		rec.Synthetic = ds.Synthetic
	}
	return rec
}

func orZero(v float64) float64 {
	if !model.Available(v) {
		return 0
	}
	return v
}

// Recorder persists score history for later review.
type Recorder interface {
	RecordScore(rec *ScoreRecord) error
	// ListScores returns the newest records first, at most limit of them.
	ListScores(limit int) ([]ScoreRecord, error)
	Close() error
}
