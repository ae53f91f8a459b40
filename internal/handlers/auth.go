package handlers

import (
	"net/http"
	"strings"
	"studymate/internal/db"
	"studymate/internal/models"
	"studymate/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	loginID := strings.TrimSpace(c.PostForm("userid"))
	password := c.PostForm("password")
	confirm := c.PostForm("password_confirm")
	nickname := strings.TrimSpace(c.PostForm("nickname"))
	email := strings.TrimSpace(c.PostForm("email"))

	if loginID == "" || password == "" || nickname == "" || email == "" {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{"Error": "모든 항목을 입력해 주세요."})
		return
	}

	if password != confirm {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{"Error": "비밀번호가 일치하지 않습니다."})
		return
	}

	// Explicit duplicate checks for a friendly message; the unique indexes
	// still back them up against races.
	var count int64
	db.DB.Model(&models.User{}).Where("login_id = ?", loginID).Count(&count)
	if count > 0 {
		Render(c, http.StatusConflict, "auth/signup.html", gin.H{"Error": "이미 사용 중인 아이디입니다."})
		return
	}
	db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		Render(c, http.StatusConflict, "auth/signup.html", gin.H{"Error": "이미 등록된 이메일입니다."})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/signup.html", gin.H{"Error": "회원가입에 실패했습니다."})
		return
	}

	user := models.User{
		LoginID:   loginID,
		Password:  hash,
		Nickname:  nickname,
		Email:     email,
		CreatedAt: utils.NowKST(),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		Render(c, http.StatusConflict, "auth/signup.html", gin.H{"Error": "이미 사용 중인 아이디 또는 이메일입니다."})
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	loginID := strings.TrimSpace(c.PostForm("userid"))
	password := c.PostForm("password")

	// Same message for unknown id and wrong password
	var user models.User
	if err := db.DB.Where("login_id = ?", loginID).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "아이디 또는 비밀번호가 올바르지 않습니다."})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "아이디 또는 비밀번호가 올바르지 않습니다."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("nickname", user.Nickname)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// CheckLoginID serves the live availability check on the signup form (AJAX).
func (h *AuthHandler) CheckLoginID(c *gin.Context) {
	loginID := strings.TrimSpace(c.Query("userid"))
	if loginID == "" {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "아이디를 입력해 주세요."})
		return
	}

	var count int64
	db.DB.Model(&models.User{}).Where("login_id = ?", loginID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "이미 사용 중인 아이디입니다."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "message": "사용 가능한 아이디입니다."})
}
