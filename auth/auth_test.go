package auth

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inkwell/models"
	"inkwell/store"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{})
	return db
}

// stubTemplates stands in for the on-disk views so HTML routes can render.
func stubTemplates() *template.Template {
	tmpl := template.New("stub")
	for _, name := range []string{"register.html", "login.html", "home.html", "error.html"} {
		template.Must(tmpl.New(name).Parse(`{{.error}}`))
	}
	return tmpl
}

func setupTestRouter(authModule *AuthModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cookieStore := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", cookieStore))
	router.SetHTMLTemplate(stubTemplates())
	router.Use(authModule.LoadPrincipal)
	authModule.RegisterRoutes(router)

	router.GET("/needs-auth", RequireAuth, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/admin-only", RequireAdmin, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func postForm(router *gin.Engine, path string, values url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getWithCookies(router *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, name, email, password string) []*http.Cookie {
	t.Helper()
	w := postForm(router, "/register", url.Values{
		"name":             {name},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	return w.Result().Cookies()
}

func TestRegister_CreatesUserAndAuthenticates(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	cookies := registerUser(t, router, "Alice", "alice@example.com", "secret123")

	user, err := s.UserByEmail("alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	// the session cookie from registration authenticates follow-up requests
	w := getWithCookies(router, "/needs-auth", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_DuplicateEmailIdempotentFailure(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	registerUser(t, router, "Alice", "alice@example.com", "secret123")

	for i := 0; i < 2; i++ {
		w := postForm(router, "/register", url.Values{
			"name":             {"Impostor"},
			"email":            {"alice@example.com"},
			"password":         {"other456"},
			"confirm_password": {"other456"},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Email is already registered.")
	}

	count, _ := s.CountUsers()
	assert.Equal(t, int64(1), count)
}

func TestRegister_PasswordConfirmationMismatch(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	w := postForm(router, "/register", url.Values{
		"name":             {"Alice"},
		"email":            {"alice@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"different"},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	count, _ := s.CountUsers()
	assert.Equal(t, int64(0), count)
}

func TestLogin_CorrectAndWrongPassword(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	registerUser(t, router, "Alice", "alice@example.com", "secret123")

	w := postForm(router, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	authed := getWithCookies(router, "/needs-auth", w.Result().Cookies())
	assert.Equal(t, http.StatusOK, authed.Code)

	// wrong password never authenticates, on any attempt
	for i := 0; i < 3; i++ {
		w := postForm(router, "/login", url.Values{
			"email":    {"alice@example.com"},
			"password": {"wrongpass"},
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Wrong password.")
	}
}

func TestLogin_EmailNotRegistered(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	w := postForm(router, "/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"whatever1"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Email not registered")
}

func TestLogout_ClearsSession(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	cookies := registerUser(t, router, "Alice", "alice@example.com", "secret123")

	w := getWithCookies(router, "/logout", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// the replaced cookie no longer authenticates
	after := getWithCookies(router, "/needs-auth", w.Result().Cookies())
	assert.Equal(t, http.StatusFound, after.Code)
	assert.Contains(t, after.Header().Get("Location"), "/login")
}

func TestRequireAuth_Anonymous(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	w := getWithCookies(router, "/needs-auth", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestRequireAdmin_FirstUserPasses(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	cookies := registerUser(t, router, "Admin", "admin@example.com", "secret123")

	w := getWithCookies(router, "/admin-only", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_MemberAndAnonymousForbidden(t *testing.T) {
	s := store.NewStore(setupTestDB())
	router := setupTestRouter(NewAuthModule(s))

	registerUser(t, router, "Admin", "admin@example.com", "secret123")
	memberCookies := registerUser(t, router, "Bob", "bob@example.com", "secret123")

	member := getWithCookies(router, "/admin-only", memberCookies)
	assert.Equal(t, http.StatusForbidden, member.Code)

	anonymous := getWithCookies(router, "/admin-only", nil)
	assert.Equal(t, http.StatusForbidden, anonymous.Code)
}

func TestLoadPrincipal_StaleSessionCleared(t *testing.T) {
	db := setupTestDB()
	s := store.NewStore(db)
	router := setupTestRouter(NewAuthModule(s))

	cookies := registerUser(t, router, "Alice", "alice@example.com", "secret123")

	db.Delete(&models.User{}, 1)

	w := getWithCookies(router, "/needs-auth", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestHashPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := hashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "testpassword123"
	hash, _ := hashPassword(password)

	assert.True(t, checkPasswordHash(password, hash))
	assert.False(t, checkPasswordHash("wrongpassword", hash))
}
