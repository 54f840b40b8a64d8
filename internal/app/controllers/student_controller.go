package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/models/dto"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/app/services"
	"github.com/svpddu/studentrecords/internal/middleware"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/export"
)

// Upload field names of the registration form
const (
	fieldStudentPhoto     = "studentPhoto"
	fieldStudentSignature = "studentSignature"
)

func guardianPhotoField(i int) string {
	return fmt.Sprintf("parent_%d_photo", i)
}

// StudentController handles student record endpoints
type StudentController struct {
	studentService  services.StudentService
	documentService services.DocumentService
	exportService   services.ExportService
	maxUploadBytes  int64
	logger          zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(
	studentService services.StudentService,
	documentService services.DocumentService,
	exportService services.ExportService,
	maxUploadMB int64,
	logger zerolog.Logger,
) *StudentController {
	return &StudentController{
		studentService:  studentService,
		documentService: documentService,
		exportService:   exportService,
		maxUploadBytes:  maxUploadMB << 20,
		logger:          logger,
	}
}

// Create handles student registration
// @Summary Register a student
// @Description Accepts a multipart form with either a studentDataJson field or flat fields, plus optional studentPhoto, studentSignature and parent_{0,1,2}_photo files. A JSON body is accepted as well.
// @Tags students
// @Accept multipart/form-data,json
// @Produce json
// @Param studentDataJson formData string false "JSON encoded student"
// @Param studentPhoto formData file false "Student photo"
// @Param studentSignature formData file false "Student signature"
// @Success 201 {object} dto.StudentMutationResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 500 {object} dto.ErrorResponse "Server error during registration"
// @Router /students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	sub, files, cleanup, err := c.readSubmission(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer cleanup()

	student, err := c.studentService.Create(ctx.Request.Context(), sub, files)
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Server error during registration")
		return
	}

	ctx.JSON(http.StatusCreated, dto.StudentMutationResponse{
		Message: "Student registered successfully",
		Student: student,
	})
}

// Update handles edits of a stored student
// @Summary Update a student
// @Description Merges the submitted fields into the stored student. Absent fields keep their stored value.
// @Tags students
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Student ID"
// @Param studentDataJson formData string false "JSON encoded student"
// @Success 200 {object} dto.StudentMutationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID format or validation failed"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent modification"
// @Failure 500 {object} dto.ErrorResponse "Server error during update"
// @Router /students/{id} [put]
func (c *StudentController) Update(ctx *gin.Context) {
	sub, files, cleanup, err := c.readSubmission(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer cleanup()

	student, err := c.studentService.Update(ctx.Request.Context(), ctx.Param("id"), sub, files)
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Server error during update")
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentMutationResponse{
		Message: "Student updated successfully",
		Student: student,
	})
}

// Verify sets the verification flag
// @Summary Verify a student
// @Tags students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.VerifyStudentRequest true "Verification flag"
// @Success 200 {object} models.Student
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID format"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [patch]
func (c *StudentController) Verify(ctx *gin.Context) {
	var req dto.VerifyStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.logger.Warn().Err(err).Msg("Invalid verification payload")
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	student, err := c.studentService.SetVerified(ctx.Request.Context(), ctx.Param("id"), req.IsVerified)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, student)
}

// List returns all students
// @Summary List students
// @Tags students
// @Produce json
// @Param class query string false "Only students of this class"
// @Success 200 {array} models.Student
// @Failure 500 {object} dto.ErrorResponse "Failed to fetch student data"
// @Router /students [get]
func (c *StudentController) List(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context(), ctx.Query("class"))
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Failed to fetch student data")
		return
	}
	ctx.JSON(http.StatusOK, students)
}

// Get returns one student
// @Summary Get a student
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} models.Student
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID format"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to fetch student data"
// @Router /students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	student, err := c.studentService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Failed to fetch student data")
		return
	}
	ctx.JSON(http.StatusOK, student)
}

// Delete removes a student
// @Summary Delete a student
// @Description Succeeds for unknown ids too.
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID format"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete student"
// @Router /students/{id} [delete]
func (c *StudentController) Delete(ctx *gin.Context) {
	if err := c.studentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "Failed to delete student")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Student deleted successfully"})
}

// ClassStrength returns head counts per class
// @Summary Class strength
// @Tags students
// @Produce json
// @Success 200 {object} dto.ClassStrengthResponse
// @Failure 500 {object} dto.ErrorResponse "Server error"
// @Router /students/class-strength [get]
func (c *StudentController) ClassStrength(ctx *gin.Context) {
	classes, err := c.studentService.ClassStrength(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ClassStrengthResponse{Classes: classes})
}

// ProfilePDF streams the printable profile of a student
// @Summary Student profile PDF
// @Tags documents
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "PDF generation failed"
// @Router /students/{id}/pdf [get]
func (c *StudentController) ProfilePDF(ctx *gin.Context) {
	doc, err := c.documentService.ProfilePDF(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "PDF generation failed")
		return
	}
	sendFile(ctx, "inline", "application/pdf", doc)
}

// IDCardPDF streams the ID card of a student
// @Summary Student ID card PDF
// @Tags documents
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "PDF generation failed"
// @Router /students/{id}/id-card [get]
func (c *StudentController) IDCardPDF(ctx *gin.Context) {
	doc, err := c.documentService.IDCardPDF(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIErrorWithMessage(ctx, err, "PDF generation failed")
		return
	}
	sendFile(ctx, "inline", "application/pdf", doc)
}

// Export downloads the register as a spreadsheet
// @Summary Export students
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param class query string false "Only students of this class"
// @Success 200 {file} binary
// @Failure 500 {object} dto.ErrorResponse "Server error"
// @Router /students/export [get]
func (c *StudentController) Export(ctx *gin.Context) {
	doc, err := c.exportService.Students(ctx.Request.Context(), ctx.Query("class"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, "attachment", export.ContentTypeXLSX, doc)
}

func sendFile(ctx *gin.Context, disposition, contentType string, doc *services.Document) {
	ctx.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": doc.Filename}))
	ctx.Data(http.StatusOK, contentType, doc.Content)
}

// readSubmission classifies the request body once: multipart and urlencoded forms
// become form submissions, anything else is read as JSON. cleanup removes
// temporary multipart files.
func (c *StudentController) readSubmission(ctx *gin.Context) (records.Submission, services.StudentFiles, func(), error) {
	noop := func() {}
	var files services.StudentFiles

	if c.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes)
	}

	switch ctx.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		if err := ctx.Request.ParseMultipartForm(32 << 20); err != nil {
			c.logger.Warn().Err(err).Msg("Invalid multipart payload")
			return records.Submission{}, files, noop, apperrors.NewBadRequestError("Invalid multipart payload")
		}
		form := ctx.Request.MultipartForm
		cleanup := func() {
			if err := form.RemoveAll(); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to remove temporary upload files")
			}
		}
		return records.NewFormSubmission(form.Value), collectFiles(form), cleanup, nil

	case gin.MIMEPOSTForm:
		if err := ctx.Request.ParseForm(); err != nil {
			c.logger.Warn().Err(err).Msg("Invalid form payload")
			return records.Submission{}, files, noop, apperrors.NewBadRequestError("Invalid form payload")
		}
		return records.NewFormSubmission(ctx.Request.PostForm), files, noop, nil

	default:
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to read request body")
			return records.Submission{}, files, noop, apperrors.NewBadRequestError("Invalid request body")
		}
		return records.NewJSONSubmission(body), files, noop, nil
	}
}

// collectFiles picks the first file of every known upload field
func collectFiles(form *multipart.Form) services.StudentFiles {
	first := func(name string) *multipart.FileHeader {
		if fhs := form.File[name]; len(fhs) > 0 {
			return fhs[0]
		}
		return nil
	}

	files := services.StudentFiles{
		StudentPhoto:     first(fieldStudentPhoto),
		StudentSignature: first(fieldStudentSignature),
	}
	for i := 0; i < models.MaxGuardianSlots; i++ {
		if fh := first(guardianPhotoField(i)); fh != nil {
			if files.Guardians == nil {
				files.Guardians = make(map[int]*multipart.FileHeader)
			}
			files.Guardians[i] = fh
		}
	}
	return files
}
