package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"studymate/internal/db"
	"studymate/internal/models"
	"studymate/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EnrollmentHandler struct{}

func NewEnrollmentHandler() *EnrollmentHandler {
	return &EnrollmentHandler{}
}

// Apply files a join request for a study. One request per (user, study);
// repeating the request is a no-op.
func (h *EnrollmentHandler) Apply(c *gin.Context) {
	user := CurrentUser(c)
	studyID := c.Param("id")

	var study models.Study
	if err := db.DB.First(&study, studyID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 스터디입니다.")
		return
	}

	if study.UserID == user.ID {
		RenderError(c, http.StatusBadRequest, "본인이 모집 중인 스터디입니다.")
		return
	}
	if study.IsClosed {
		RenderError(c, http.StatusBadRequest, "모집이 마감된 스터디입니다.")
		return
	}

	enrollment := models.Enrollment{
		UserID:    user.ID,
		StudyID:   study.ID,
		Status:    models.EnrollmentPending,
		CreatedAt: utils.NowKST(),
	}
	if err := db.DB.Create(&enrollment).Error; err != nil {
		// Already applied; keep the existing request as-is
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			RenderError(c, http.StatusInternalServerError, "신청에 실패했습니다.")
			return
		}
	}

	c.Redirect(http.StatusFound, "/study/"+studyID)
}

// decide moves a pending request to accepted or rejected. Only the study
// owner may decide, and a settled request stays settled.
func (h *EnrollmentHandler) decide(c *gin.Context, status models.EnrollmentStatus) {
	user := CurrentUser(c)
	id := c.Param("id")

	var enrollment models.Enrollment
	if err := db.DB.Preload("Study").First(&enrollment, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 신청입니다.")
		return
	}

	if enrollment.Study.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "모집자만 처리할 수 있습니다.")
		return
	}

	if enrollment.Status != models.EnrollmentPending {
		c.Redirect(http.StatusFound, fmt.Sprintf("/study/%d", enrollment.StudyID))
		return
	}

	// The status condition keeps a decision that raced past the check above
	// from overwriting one that already settled; zero rows affected means the
	// other write landed first, which reads the same as already-settled.
	result := db.DB.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentPending).
		Update("status", status)
	if result.Error != nil {
		RenderError(c, http.StatusInternalServerError, "처리에 실패했습니다.")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/study/%d", enrollment.StudyID))
}

func (h *EnrollmentHandler) Accept(c *gin.Context) {
	h.decide(c, models.EnrollmentAccepted)
}

func (h *EnrollmentHandler) Reject(c *gin.Context) {
	h.decide(c, models.EnrollmentRejected)
}
