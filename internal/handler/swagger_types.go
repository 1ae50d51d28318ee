package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// StatusUpdateRequest represents the status transition request body.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required" example:"sent"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"document deleted"`
}

// MatchCandidateEntry represents one scored candidate in a match response.
type MatchCandidateEntry struct {
	Candidate interface{} `json:"candidate"`
	Score     float64     `json:"score" example:"9.5"`
}

// MatchResponse represents the ranked candidates for a match request.
type MatchResponse struct {
	Matches    []MatchCandidateEntry `json:"matches"`
	Confidence string                `json:"confidence" example:"high"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
