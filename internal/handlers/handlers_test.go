package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"studymate/internal/db"
	"studymate/internal/middleware"
	"studymate/internal/models"
	"studymate/internal/router"
	"studymate/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupServer builds a full router over a fresh in-memory database. Each
// test gets its own named database so state never crosses tests.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Study{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Enrollment{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	db.DB = gdb

	// The page cache is a process-wide singleton
	utils.GetCache().Purge()

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("studymate_session", store))
	r.HTMLRender = testTemplates()
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

// testTemplates registers stub views that print just enough render data for
// assertions.
func testTemplates() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromString("index.html", `{{range .Studies}}[{{.ID}}]{{end}}`)
	r.AddFromString("auth/login.html", `login:{{.Error}}`)
	r.AddFromString("auth/signup.html", `signup:{{.Error}}`)
	r.AddFromString("study/list.html", `{{range .Studies}}[{{.ID}}]{{end}}|page={{.CurrentPage}}|pages={{.TotalPages}}|user={{with .CurrentUser}}{{.Nickname}}{{end}}`)
	r.AddFromString("study/detail.html", `{{.Study.Title}}|owner={{.IsOwner}}|comments={{len .Comments}}|pending={{with .PendingEnrollments}}{{len .}}{{end}}`)
	r.AddFromString("study/write.html", `write:{{.Error}}`)
	r.AddFromString("study/edit.html", `edit:{{.Error}}`)
	r.AddFromString("study/myposts.html", `{{range .Studies}}[{{.ID}}]{{end}}`)
	r.AddFromString("error.html", `error:{{.Error}}`)
	return r
}

func doGET(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doPOST(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// signup registers an account through the real handler.
func signup(t *testing.T, r *gin.Engine, loginID, nickname, email, password string) {
	t.Helper()
	w := doPOST(r, "/signup", url.Values{
		"userid":           {loginID},
		"password":         {password},
		"password_confirm": {password},
		"nickname":         {nickname},
		"email":            {email},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("signup %s: expected redirect, got %d (%s)", loginID, w.Code, w.Body.String())
	}
}

// login authenticates and returns the session cookies for later requests.
func login(t *testing.T, r *gin.Engine, loginID, password string) []*http.Cookie {
	t.Helper()
	w := doPOST(r, "/login", url.Values{
		"userid":   {loginID},
		"password": {password},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login %s: expected redirect, got %d (%s)", loginID, w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login %s: no session cookie set", loginID)
	}
	return cookies
}

// signupAndLogin is the common two-step for tests needing a session.
func signupAndLogin(t *testing.T, r *gin.Engine, loginID, nickname, email string) []*http.Cookie {
	t.Helper()
	signup(t, r, loginID, nickname, email, "pass1234")
	return login(t, r, loginID, "pass1234")
}

func userByLoginID(t *testing.T, loginID string) models.User {
	t.Helper()
	var user models.User
	if err := db.DB.Where("login_id = ?", loginID).First(&user).Error; err != nil {
		t.Fatalf("user %s not found: %v", loginID, err)
	}
	return user
}
