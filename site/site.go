package site

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/auth"
	"inkwell/forms"
)

// ContactMailer is satisfied by email.Mailer; tests swap in a stub.
type ContactMailer interface {
	SendContactMessage(name, fromEmail, phone, message string) error
}

type SiteModule struct {
	mailer ContactMailer
}

func NewSiteModule(mailer ContactMailer) *SiteModule {
	return &SiteModule{mailer: mailer}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/about", s.about)
	router.GET("/contact", s.contactPage)
	router.POST("/contact", s.contactPost)
}

func (s *SiteModule) about(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{
		"user": auth.CurrentUser(c),
	})
}

func (s *SiteModule) contactPage(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"user": auth.CurrentUser(c),
	})
}

func (s *SiteModule) contactPost(c *gin.Context) {
	var form forms.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "contact.html", gin.H{
			"error": forms.ErrorMessage(err),
			"form":  form,
			"user":  auth.CurrentUser(c),
		})
		return
	}

	if err := s.mailer.SendContactMessage(form.Name, form.Email, form.Phone, form.Message); err != nil {
		log.Printf("Error sending contact message from %s: %v", form.Email, err)
		c.HTML(http.StatusBadGateway, "contact.html", gin.H{
			"error": "Could not send your message. Please try again later.",
			"form":  form,
			"user":  auth.CurrentUser(c),
		})
		return
	}

	c.HTML(http.StatusOK, "contact.html", gin.H{
		"submitted": true,
		"user":      auth.CurrentUser(c),
	})
}
