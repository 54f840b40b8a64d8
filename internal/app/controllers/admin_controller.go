package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models/dto"
	"github.com/svpddu/studentrecords/internal/app/services"
	"github.com/svpddu/studentrecords/internal/middleware"
)

// AdminController handles the batch maintenance endpoints
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// Promote advances all students by one class
// @Summary Promote all students
// @Description Moves every non-graduated student with a numeric class up by one. Class 12 students graduate.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PromotionResponse
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Failed to promote students"
// @Router /students/promote [post]
func (c *AdminController) Promote(ctx *gin.Context) {
	userID, _ := ctx.Get(middleware.ContextUserID)
	c.logger.Info().Interface("userID", userID).Msg("Batch promotion requested")

	result, err := c.adminService.Promote(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Failed to promote students")
		return
	}

	ctx.JSON(http.StatusOK, dto.PromotionResponse{
		Message:   "Students promoted successfully",
		Promoted:  result.Promoted,
		Graduated: result.Graduated,
	})
}

// PurgeYear deletes a whole admission cohort
// @Summary Delete students by admission year
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param year path string true "Admission year (YYYY)"
// @Success 200 {object} dto.PurgeResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid year format"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete students"
// @Router /students/delete/{year} [delete]
func (c *AdminController) PurgeYear(ctx *gin.Context) {
	year := ctx.Param("year")
	userID, _ := ctx.Get(middleware.ContextUserID)
	c.logger.Info().Interface("userID", userID).Str("year", year).Msg("Cohort deletion requested")

	deleted, err := c.adminService.PurgeYear(ctx.Request.Context(), year)
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Failed to delete students")
		return
	}

	ctx.JSON(http.StatusOK, dto.PurgeResponse{
		Message:      "Students deleted successfully",
		DeletedCount: deleted,
	})
}
