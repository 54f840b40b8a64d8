package dto

import "github.com/svpddu/studentrecords/internal/app/models"

// StudentMutationResponse is returned by create and update
type StudentMutationResponse struct {
	Message string          `json:"message" example:"Student registered successfully"`
	Student *models.Student `json:"student"`
}

// VerifyStudentRequest toggles the verification flag
type VerifyStudentRequest struct {
	IsVerified *bool `json:"isVerified" example:"true"`
}

// ClassStrengthResponse lists head counts per class
type ClassStrengthResponse struct {
	Classes []models.ClassStrength `json:"classes"`
}

// PromotionResponse reports a batch promotion
type PromotionResponse struct {
	Message   string `json:"message" example:"Students promoted successfully"`
	Promoted  int64  `json:"promoted" example:"120"`
	Graduated int64  `json:"graduated" example:"18"`
}

// PurgeResponse reports a cohort deletion
type PurgeResponse struct {
	Message      string `json:"message" example:"Students deleted successfully"`
	DeletedCount int64  `json:"deletedCount" example:"42"`
}
