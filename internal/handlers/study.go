package handlers

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studymate/internal/db"
	"studymate/internal/models"
	"studymate/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	studyPerPage   = 9
	recommendCount = 3
)

type StudyHandler struct{}

func NewStudyHandler() *StudyHandler {
	return &StudyHandler{}
}

// fillCommentCounts batch-fills the comment count for a page of studies.
func fillCommentCounts(studies []models.Study) {
	if len(studies) == 0 {
		return
	}

	studyIDs := make([]uint, len(studies))
	for i, s := range studies {
		studyIDs[i] = s.ID
	}

	type CountResult struct {
		StudyID uint
		Count   int
	}
	var results []CountResult
	db.DB.Model(&models.Comment{}).
		Select("study_id, COUNT(*) as count").
		Where("study_id IN ?", studyIDs).
		Group("study_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.StudyID] = r.Count
	}

	for i := range studies {
		studies[i].CommentCount = countMap[studies[i].ID]
	}
}

// Home renders the landing page with a few random listings.
func (h *StudyHandler) Home(c *gin.Context) {
	// Sampling without replacement; fewer rows than asked for just means a
	// shorter list.
	var studies []models.Study
	db.DB.Order("RANDOM()").Limit(recommendCount).Find(&studies)

	fillCommentCounts(studies)

	Render(c, http.StatusOK, "index.html", gin.H{
		"Title":   "스터디메이트",
		"Studies": studies,
	})
}

// listPage holds the cacheable part of a listing page. Only query results go
// in the cache; Render injects per-request keys into a fresh map every time,
// so one client's identity never reaches another client's render.
type listPage struct {
	Studies    []models.Study
	Total      int64
	TotalPages int
}

func renderListPage(c *gin.Context, page int, keyword string, data listPage) {
	Render(c, http.StatusOK, "study/list.html", gin.H{
		"Title":       "스터디 찾기",
		"Studies":     data.Studies,
		"Keyword":     keyword,
		"CurrentPage": page,
		"TotalPages":  data.TotalPages,
		"Total":       data.Total,
	})
}

// List renders the paginated, optionally keyword-filtered listing index.
func (h *StudyHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	keyword := strings.TrimSpace(c.Query("keyword"))

	// Unfiltered pages are the hot path, cache them briefly
	cacheKey := fmt.Sprintf("study:list:page:%d", page)
	if keyword == "" {
		if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
			if pageData, ok := cachedData.(listPage); ok {
				renderListPage(c, page, keyword, pageData)
				return
			}
		}
	}

	offset := (page - 1) * studyPerPage

	// LOWER on both sides keeps the match case-insensitive on every driver
	pattern := "%" + strings.ToLower(keyword) + "%"

	countQuery := db.DB.Model(&models.Study{})
	if keyword != "" {
		countQuery = countQuery.Where("LOWER(title) LIKE ?", pattern)
	}
	var total int64
	countQuery.Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(studyPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	// Out-of-range pages fall through to an empty slice, never an error
	listQuery := db.DB.Model(&models.Study{})
	if keyword != "" {
		listQuery = listQuery.Where("LOWER(title) LIKE ?", pattern)
	}
	var studies []models.Study
	listQuery.Order("created_at DESC").
		Limit(studyPerPage).
		Offset(offset).
		Find(&studies)

	fillCommentCounts(studies)

	pageData := listPage{Studies: studies, Total: total, TotalPages: totalPages}
	if keyword == "" {
		utils.GetCache().Set(cacheKey, pageData, 1*time.Minute)
	}

	renderListPage(c, page, keyword, pageData)
}

func (h *StudyHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "study/write.html", gin.H{"Title": "스터디 모집하기"})
}

func (h *StudyHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	title := strings.TrimSpace(c.PostForm("title"))
	category := strings.TrimSpace(c.PostForm("category"))
	content := c.PostForm("content")
	chatLink := strings.TrimSpace(c.PostForm("chat_link"))
	memberCount := utils.StringToInt(c.PostForm("member_count"))

	if title == "" || category == "" || content == "" {
		Render(c, http.StatusBadRequest, "study/write.html", gin.H{"Error": "제목, 카테고리, 내용을 모두 입력해 주세요."})
		return
	}
	if memberCount < 1 {
		Render(c, http.StatusBadRequest, "study/write.html", gin.H{"Error": "모집 인원은 1명 이상이어야 합니다."})
		return
	}

	study := models.Study{
		UserID:      user.ID,
		Writer:      user.Nickname,
		Title:       title,
		Category:    category,
		MemberCount: memberCount,
		Content:     content,
		ChatLink:    chatLink,
		CreatedAt:   utils.NowKST(),
	}

	if err := db.DB.Create(&study).Error; err != nil {
		Render(c, http.StatusInternalServerError, "study/write.html", gin.H{"Error": "등록에 실패했습니다."})
		return
	}

	utils.GetCache().DeletePrefix("study:list:page:")

	c.Redirect(http.StatusFound, "/study")
}

// CommentNode is a comment plus its rendered content, like state, and
// replies. The tree is assembled from a flat query via a parent->children
// index, so there are no back-pointers.
type CommentNode struct {
	models.Comment
	ContentHTML template.HTML
	LikeCount   int64
	LikedByMe   bool
	Replies     []*CommentNode
}

// buildCommentTree turns the flat, date-ascending comment rows into a tree.
func buildCommentTree(comments []models.Comment, likeCounts map[uint]int64, liked map[uint]bool) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	var roots []*CommentNode

	for i := range comments {
		com := comments[i]
		nodes[com.ID] = &CommentNode{
			Comment:     com,
			ContentHTML: utils.RenderMarkdown(com.Content),
			LikeCount:   likeCounts[com.ID],
			LikedByMe:   liked[com.ID],
		}
	}

	// Rows come in creation order, so a parent always precedes its replies
	for i := range comments {
		node := nodes[comments[i].ID]
		if comments[i].ParentID != nil {
			if parent, ok := nodes[*comments[i].ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

func (h *StudyHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	var study models.Study
	if err := db.DB.Preload("User").First(&study, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 스터디입니다.")
		return
	}

	// Load the whole comment set for the study in one query
	var comments []models.Comment
	db.DB.Preload("User").Where("study_id = ?", study.ID).Order("created_at ASC").Find(&comments)

	likeCounts := make(map[uint]int64)
	if len(comments) > 0 {
		commentIDs := make([]uint, len(comments))
		for i, com := range comments {
			commentIDs[i] = com.ID
		}

		type CountResult struct {
			CommentID uint
			Count     int64
		}
		var results []CountResult
		db.DB.Model(&models.CommentLike{}).
			Select("comment_id, COUNT(*) as count").
			Where("comment_id IN ?", commentIDs).
			Group("comment_id").
			Scan(&results)
		for _, r := range results {
			likeCounts[r.CommentID] = r.Count
		}
	}

	// The caller's own liked set, so the view can highlight like buttons
	liked := make(map[uint]bool)
	user := CurrentUser(c)
	if user != nil && len(comments) > 0 {
		var likedIDs []uint
		db.DB.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN (SELECT id FROM comments WHERE study_id = ?)", user.ID, study.ID).
			Pluck("comment_id", &likedIDs)
		for _, cid := range likedIDs {
			liked[cid] = true
		}
	}

	renderData := gin.H{
		"Title":        study.Title,
		"Study":        study,
		"StudyContent": utils.RenderMarkdown(study.Content),
		"Comments":     buildCommentTree(comments, likeCounts, liked),
		"IsOwner":      user != nil && user.ID == study.UserID,
	}

	// Owners also see who asked to join
	if user != nil && user.ID == study.UserID {
		var pending []models.Enrollment
		db.DB.Preload("User").
			Where("study_id = ? AND status = ?", study.ID, models.EnrollmentPending).
			Order("created_at ASC").
			Find(&pending)
		renderData["PendingEnrollments"] = pending
	} else if user != nil {
		var enrollment models.Enrollment
		if err := db.DB.Where("user_id = ? AND study_id = ?", user.ID, study.ID).First(&enrollment).Error; err == nil {
			renderData["MyEnrollment"] = enrollment
		}
	}

	Render(c, http.StatusOK, "study/detail.html", renderData)
}

func (h *StudyHandler) ShowEdit(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	var study models.Study
	if err := db.DB.First(&study, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 스터디입니다.")
		return
	}

	if study.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "작성자만 수정할 수 있습니다.")
		return
	}

	Render(c, http.StatusOK, "study/edit.html", gin.H{
		"Title": "스터디 수정",
		"Study": study,
	})
}

func (h *StudyHandler) Update(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	var study models.Study
	if err := db.DB.First(&study, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 스터디입니다.")
		return
	}

	if study.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "작성자만 수정할 수 있습니다.")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	category := strings.TrimSpace(c.PostForm("category"))
	content := c.PostForm("content")
	chatLink := strings.TrimSpace(c.PostForm("chat_link"))
	memberCount := utils.StringToInt(c.PostForm("member_count"))
	isClosed := c.PostForm("is_closed") == "on" || c.PostForm("is_closed") == "true"

	if title == "" || category == "" || content == "" {
		Render(c, http.StatusBadRequest, "study/edit.html", gin.H{
			"Error": "제목, 카테고리, 내용을 모두 입력해 주세요.",
			"Study": study,
		})
		return
	}
	if memberCount < 1 {
		memberCount = study.MemberCount
	}

	// CreatedAt stays untouched; only the editable fields are written
	updates := map[string]interface{}{
		"title":        title,
		"category":     category,
		"member_count": memberCount,
		"content":      content,
		"chat_link":    chatLink,
		"is_closed":    isClosed,
	}
	if err := db.DB.Model(&study).Updates(updates).Error; err != nil {
		Render(c, http.StatusInternalServerError, "study/edit.html", gin.H{
			"Error": "저장에 실패했습니다.",
			"Study": study,
		})
		return
	}

	utils.GetCache().DeletePrefix("study:list:page:")

	c.Redirect(http.StatusFound, "/study/"+id)
}

func (h *StudyHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	var study models.Study
	if err := db.DB.First(&study, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "존재하지 않는 스터디입니다.")
		return
	}

	if study.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "작성자만 삭제할 수 있습니다.")
		return
	}

	// The study, its comments, their likes, and its enrollments all go in
	// one transaction so a failure can't leave orphans behind.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("study_id = ?", study.ID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("study_id = ?", study.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("study_id = ?", study.ID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&study).Error
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "삭제에 실패했습니다.")
		return
	}

	utils.GetCache().DeletePrefix("study:list:page:")

	c.Redirect(http.StatusFound, "/study")
}

// MyPosts lists the caller's own studies, newest first.
func (h *StudyHandler) MyPosts(c *gin.Context) {
	user := CurrentUser(c)

	var studies []models.Study
	db.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&studies)

	fillCommentCounts(studies)

	Render(c, http.StatusOK, "study/myposts.html", gin.H{
		"Title":   "내가 쓴 글",
		"Studies": studies,
	})
}
