package dto

// SuccessResponse carries a bare confirmation message
type SuccessResponse struct {
	Message string `json:"message" example:"Student deleted successfully"`
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
