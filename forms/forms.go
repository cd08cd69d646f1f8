package forms

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Form structs bound from POST bodies. Validation rules live in the binding
// tags; gin runs them through go-playground/validator on ShouldBind.

type RegisterForm struct {
	Name            string `form:"name" binding:"required"`
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type PostForm struct {
	Title    string `form:"title" binding:"required"`
	Subtitle string `form:"subtitle" binding:"required"`
	ImgURL   string `form:"img_url" binding:"required,url"`
	Body     string `form:"body" binding:"required"`
}

type CommentForm struct {
	Comment string `form:"comment" binding:"required"`
}

type ContactForm struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email" binding:"required,email"`
	Phone   string `form:"phone" binding:"required"`
	Message string `form:"message" binding:"required"`
}

var fieldLabels = map[string]string{
	"Name":            "Name",
	"Email":           "Email",
	"Password":        "Password",
	"ConfirmPassword": "Confirm Password",
	"Title":           "Blog Post Title",
	"Subtitle":        "Subtitle",
	"ImgURL":          "Blog Image URL",
	"Body":            "Blog Content",
	"Comment":         "Comment",
	"Phone":           "Phone",
	"Message":         "Message",
}

// ErrorMessage turns a binding error into one user-facing sentence for the
// re-rendered form.
func ErrorMessage(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "Invalid form submission."
	}

	fieldError := validationErrors[0]
	label := fieldLabels[fieldError.Field()]
	if label == "" {
		label = fieldError.Field()
	}

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", label)
	case "eqfield":
		return "Passwords not match"
	}
	return fmt.Sprintf("%s is invalid.", label)
}
