package model

// Trend is the direction of the latest move in a chart.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Chart is one chart tuple handed to the rendering layer.
type Chart struct {
	Title    string            `json:"title"`
	Current  string            `json:"current"`
	Trend    Trend             `json:"trend"`
	Points   Series            `json:"points"`
	SubLabel string            `json:"sub_label,omitempty"`
	Overlays map[string]Series `json:"overlays,omitempty"`
}

// View is the full presentation payload.
type View struct {
	NoData         bool           `json:"no_data"`
	Synthetic      bool           `json:"synthetic"`
	LastUpdated    string         `json:"last_updated,omitempty"`
	CycleID        string         `json:"cycle_id,omitempty"`
	Charts         []Chart        `json:"charts"`
	Score          int            `json:"score"`
	SafetyWarning  bool           `json:"safety_warning"`
	ValuationRatio float64        `json:"valuation_ratio"`
	Detail         *LeverageScore `json:"detail,omitempty"`
}
