package site

import (
	"errors"
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
)

type stubMailer struct {
	err   error
	calls int
	last  []string
}

func (m *stubMailer) SendContactMessage(name, fromEmail, phone, message string) error {
	m.calls++
	m.last = []string{name, fromEmail, phone, message}
	return m.err
}

func stubTemplates() *template.Template {
	tmpl := template.New("stub")
	for _, name := range []string{"about.html", "contact.html"} {
		template.Must(tmpl.New(name).Parse(`{{.error}}{{if .submitted}}sent{{end}}`))
	}
	return tmpl
}

func setupTestRouter(mailer ContactMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cookieStore := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", cookieStore))
	router.SetHTMLTemplate(stubTemplates())
	NewSiteModule(mailer).RegisterRoutes(router)
	return router
}

func postContact(router *gin.Engine, values url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAboutPage(t *testing.T) {
	router := setupTestRouter(&stubMailer{})

	req, _ := http.NewRequest("GET", "/about", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContactPage(t *testing.T) {
	router := setupTestRouter(&stubMailer{})

	req, _ := http.NewRequest("GET", "/contact", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContactPost_SendsMessage(t *testing.T) {
	mailer := &stubMailer{}
	router := setupTestRouter(mailer)

	w := postContact(router, url.Values{
		"name":    {"Alice"},
		"email":   {"alice@example.com"},
		"phone":   {"555-0100"},
		"message": {"Hello"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sent")
	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, []string{"Alice", "alice@example.com", "555-0100", "Hello"}, mailer.last)
}

func TestContactPost_MissingFields(t *testing.T) {
	mailer := &stubMailer{}
	router := setupTestRouter(mailer)

	w := postContact(router, url.Values{
		"name": {"Alice"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, mailer.calls)
}

func TestContactPost_RelayFailureSurfaced(t *testing.T) {
	mailer := &stubMailer{err: errors.New("relay unreachable")}
	router := setupTestRouter(mailer)

	w := postContact(router, url.Values{
		"name":    {"Alice"},
		"email":   {"alice@example.com"},
		"phone":   {"555-0100"},
		"message": {"Hello"},
	})

	// the fault is recovered into a user-visible error, not a crashed request
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Could not send your message")
	assert.Equal(t, 1, mailer.calls)
}
