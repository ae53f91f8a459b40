package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"studymate/internal/db"
	"studymate/internal/models"
	"studymate/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create adds a comment, or a reply when parent_id is supplied. Reply depth
// is unbounded: a parent may itself be a reply.
func (h *CommentHandler) Create(c *gin.Context) {
	user := CurrentUser(c)
	studyID := c.Param("study_id")

	var study models.Study
	if err := db.DB.First(&study, studyID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 스터디입니다.")
		return
	}

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		c.Redirect(http.StatusFound, "/study/"+studyID)
		return
	}

	var parentID *uint
	if parentIDStr := c.PostForm("parent_id"); parentIDStr != "" {
		pID := uint(utils.StringToInt(parentIDStr))

		var parent models.Comment
		if err := db.DB.First(&parent, pID).Error; err != nil {
			RenderError(c, http.StatusNotFound, "존재하지 않는 댓글입니다.")
			return
		}
		// A reply must stay inside its own study's thread
		if parent.StudyID != study.ID {
			RenderError(c, http.StatusNotFound, "존재하지 않는 댓글입니다.")
			return
		}
		parentID = &pID
	}

	comment := models.Comment{
		StudyID:   study.ID,
		UserID:    user.ID,
		ParentID:  parentID,
		Writer:    user.Nickname,
		Content:   content,
		CreatedAt: utils.NowKST(),
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "댓글 등록에 실패했습니다.")
		return
	}

	c.Redirect(http.StatusFound, "/study/"+studyID)
}

// collectDescendants walks the parent index breadth-first and returns the
// comment's id plus every reply underneath it, transitively.
func collectDescendants(tx *gorm.DB, root models.Comment) ([]uint, error) {
	// One query for the whole study keeps the walk out of the database
	type row struct {
		ID       uint
		ParentID *uint
	}
	var rows []row
	if err := tx.Model(&models.Comment{}).
		Select("id, parent_id").
		Where("study_id = ?", root.StudyID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	children := make(map[uint][]uint)
	for _, r := range rows {
		if r.ParentID != nil {
			children[*r.ParentID] = append(children[*r.ParentID], r.ID)
		}
	}

	ids := []uint{root.ID}
	for queue := []uint{root.ID}; len(queue) > 0; {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids, nil
}

// Delete removes a comment and, transitively, all replies under it along
// with their like rows.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 댓글입니다.")
		return
	}

	if comment.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "작성자만 삭제할 수 있습니다.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		ids, err := collectDescendants(tx, comment)
		if err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "댓글 삭제에 실패했습니다.")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/study/%d", comment.StudyID))
}

// ToggleLike adds or removes the caller's like on a comment and returns the
// new count as plain text for the like button to swap in.
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	var existing models.CommentLike
	if err := db.DB.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).First(&existing).Error; err == nil {
		db.DB.Delete(&existing)
	} else {
		like := models.CommentLike{
			UserID:    user.ID,
			CommentID: comment.ID,
			CreatedAt: utils.NowKST(),
		}
		if err := db.DB.Create(&like).Error; err != nil {
			// A concurrent toggle already inserted the pair; the unique
			// index caught it, and "already liked" is the desired state.
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				c.Status(http.StatusInternalServerError)
				return
			}
		}
	}

	var count int64
	db.DB.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&count)
	c.String(http.StatusOK, fmt.Sprintf("%d", count))
}
