package dto

// ImportResponse only reports counts, never the imported statements.
type ImportResponse struct {
	Round1Statements int    `json:"round1_statements"`
	Round2Statements int    `json:"round2_statements"`
	Round3Sets       int    `json:"round3_sets"`
	Notice           string `json:"notice"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
