package report

// FactorInfo describes one exportable metric.
type FactorInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// FactorGroup groups related exportable metrics.
type FactorGroup struct {
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Factors     map[string]FactorInfo `json:"factors"`
}
