package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"inkwell/forms"
	"inkwell/models"
	"inkwell/store"
)

const (
	sessionUserKey = "user_id"
	contextUserKey = "current_user"
)

type AuthModule struct {
	store *store.Store
}

func NewAuthModule(s *store.Store) *AuthModule {
	return &AuthModule{store: s}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/register", a.registerPage)
	router.POST("/register", a.registerPost)
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/logout", a.logout)
}

// LoadPrincipal resolves the session's user id into a full user record and
// stores it on the request context. A stale id (user row gone) clears the
// session instead of faulting.
func (a *AuthModule) LoadPrincipal(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(sessionUserKey)

	if userID == nil {
		c.Next()
		return
	}

	id, ok := userID.(int)
	if !ok {
		session.Clear()
		session.Save()
		c.Next()
		return
	}

	user, err := a.store.UserByID(id)
	if err != nil {
		session.Clear()
		session.Save()
		c.Next()
		return
	}

	c.Set(contextUserKey, user)
	c.Next()
}

// CurrentUser returns the authenticated principal, or nil for anonymous.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth(c *gin.Context) {
	if CurrentUser(c) == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

// RequireAdmin rejects everyone but the admin with 403 before the handler
// body runs, so no side effects can occur.
func RequireAdmin(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || !user.IsAdmin() {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.Next()
}

// SetFlash queues a one-shot message shown on the next rendered page.
func SetFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	session.Save()
}

// Flashes drains queued flash messages.
func Flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save()
	}

	var messages []string
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

func (a *AuthModule) registerPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (a *AuthModule) registerPost(c *gin.Context) {
	var form forms.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"error": forms.ErrorMessage(err),
			"name":  form.Name,
			"email": form.Email,
		})
		return
	}

	passwordHash, err := hashPassword(form.Password)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"error": "Could not create account.",
			"name":  form.Name,
			"email": form.Email,
		})
		return
	}

	user := models.User{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: passwordHash,
	}

	if err := a.store.CreateUser(&user); err != nil {
		status := http.StatusInternalServerError
		message := "Could not create account."
		if err == store.ErrDuplicateEmail {
			status = http.StatusBadRequest
			message = "Email is already registered."
		}
		c.HTML(status, "register.html", gin.H{
			"error": message,
			"name":  form.Name,
			"email": form.Email,
		})
		return
	}

	a.loginSession(c, &user)
	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) loginPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"flashes": Flashes(c),
	})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"error": forms.ErrorMessage(err),
			"email": form.Email,
		})
		return
	}

	user, err := a.store.UserByEmail(form.Email)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"error": "Email not registered",
			"email": form.Email,
		})
		return
	}

	if !checkPasswordHash(form.Password, user.PasswordHash) {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"error": "Wrong password.",
			"email": form.Email,
		})
		return
	}

	a.loginSession(c, user)
	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	SetFlash(c, "Logged out success.")
	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) loginSession(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	session.Save()
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
