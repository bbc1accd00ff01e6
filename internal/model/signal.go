package model

// FactorScore is one rule's contribution to the leverage score.
type FactorScore struct {
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Applied    bool   `json:"applied"`
	Commentary string `json:"commentary"`
}

// LeverageScore is the final output of the score model.
type LeverageScore struct {
	Score         int           `json:"score"`
	Raw           int           `json:"raw"`
	SafetyWarning bool          `json:"safety_warning"`
	Factors       []FactorScore `json:"factors"`
	WarningMsg    string        `json:"warning,omitempty"`
}
