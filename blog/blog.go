package blog

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"inkwell/auth"
	"inkwell/cache"
	"inkwell/forms"
	"inkwell/models"
	"inkwell/store"
)

const (
	postDateFormat    = "January 02, 2006"
	commentDateFormat = "January 02 2006"
)

type BlogModule struct {
	store *store.Store
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

func NewBlogModule(s *store.Store) *BlogModule {
	return &BlogModule{store: s}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", b.home)
	router.GET("/post/:id", cache.PostPageMiddleware(10*time.Minute), b.showPost)
	router.POST("/post/:id", b.commentPost)
	router.GET("/new-post", auth.RequireAdmin, b.newPostPage)
	router.POST("/new-post", auth.RequireAdmin, b.newPost)
	router.GET("/edit-post/:id", auth.RequireAdmin, b.editPostPage)
	router.POST("/edit-post/:id", auth.RequireAdmin, b.editPost)
	// No admin gate here: any logged-in user can delete any post. Kept as-is
	// on purpose; see TestDeletePost_NonAdminAuthenticatedAllowed.
	router.GET("/delete/:id", auth.RequireAuth, b.deletePost)
	router.GET("/sitemap.xml", b.sitemap)
}

func (b *BlogModule) home(c *gin.Context) {
	posts, err := b.store.Posts()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Could not load posts",
		})
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"posts":   posts,
		"user":    auth.CurrentUser(c),
		"flashes": auth.Flashes(c),
	})
}

// commentView pairs a comment with its writer's display name for rendering.
type commentView struct {
	Writer string
	Body   template.HTML
	Date   string
}

func (b *BlogModule) showPost(c *gin.Context) {
	post, ok := b.requestedPost(c)
	if !ok {
		return
	}

	b.renderPost(c, post, "")
}

func (b *BlogModule) renderPost(c *gin.Context, post *models.Post, formError string) {
	comments, err := b.store.CommentsByPost(post.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Could not load comments",
		})
		return
	}

	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		writerName := "Unknown"
		if writer, err := b.store.UserByID(comment.WriterID); err == nil {
			writerName = writer.Name
		}
		views = append(views, commentView{
			Writer: writerName,
			Body:   template.HTML(renderMarkdown(comment.Body)),
			Date:   comment.Date,
		})
	}

	status := http.StatusOK
	if formError != "" {
		status = http.StatusBadRequest
	}

	c.HTML(status, "post.html", gin.H{
		"post":     post,
		"bodyHTML": template.HTML(renderMarkdown(post.Body)),
		"comments": views,
		"user":     auth.CurrentUser(c),
		"error":    formError,
	})
}

func (b *BlogModule) commentPost(c *gin.Context) {
	post, ok := b.requestedPost(c)
	if !ok {
		return
	}

	user := auth.CurrentUser(c)
	if user == nil {
		auth.SetFlash(c, "You need to login to comment.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form forms.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		b.renderPost(c, post, forms.ErrorMessage(err))
		return
	}

	comment := models.Comment{
		WriterID: user.ID,
		PostID:   post.ID,
		Body:     form.Comment,
		Date:     time.Now().Format(commentDateFormat),
	}

	if err := b.store.CreateComment(&comment); err != nil {
		b.renderPost(c, post, "Could not save comment.")
		return
	}

	cache.ClearPost(post.ID)
	c.Redirect(http.StatusFound, "/post/"+strconv.Itoa(post.ID))
}

func (b *BlogModule) newPostPage(c *gin.Context) {
	c.HTML(http.StatusOK, "make_post.html", gin.H{
		"user": auth.CurrentUser(c),
	})
}

func (b *BlogModule) newPost(c *gin.Context) {
	user := auth.CurrentUser(c)

	var form forms.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "make_post.html", gin.H{
			"error": forms.ErrorMessage(err),
			"form":  form,
			"user":  user,
		})
		return
	}

	post := models.Post{
		AuthorID: user.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
		Date:     time.Now().Format(postDateFormat),
	}

	if err := b.store.CreatePost(&post); err != nil {
		status := http.StatusInternalServerError
		message := "Could not create post."
		if err == store.ErrDuplicateTitle {
			status = http.StatusBadRequest
			message = "A post with this title already exists."
		}
		c.HTML(status, "make_post.html", gin.H{
			"error": message,
			"form":  form,
			"user":  user,
		})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (b *BlogModule) editPostPage(c *gin.Context) {
	post, ok := b.requestedPost(c)
	if !ok {
		return
	}

	// Pre-populate the form from the existing post.
	c.HTML(http.StatusOK, "make_post.html", gin.H{
		"post": post,
		"form": forms.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
		"user": auth.CurrentUser(c),
	})
}

func (b *BlogModule) editPost(c *gin.Context) {
	post, ok := b.requestedPost(c)
	if !ok {
		return
	}

	var form forms.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "make_post.html", gin.H{
			"error": forms.ErrorMessage(err),
			"post":  post,
			"form":  form,
			"user":  auth.CurrentUser(c),
		})
		return
	}

	err := b.store.UpdatePost(post.ID, form.Title, form.Subtitle, form.Body, form.ImgURL)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Could not update post."
		if err == store.ErrDuplicateTitle {
			status = http.StatusBadRequest
			message = "A post with this title already exists."
		}
		c.HTML(status, "make_post.html", gin.H{
			"error": message,
			"post":  post,
			"form":  form,
			"user":  auth.CurrentUser(c),
		})
		return
	}

	cache.ClearPost(post.ID)
	c.Redirect(http.StatusFound, "/post/"+strconv.Itoa(post.ID))
}

func (b *BlogModule) deletePost(c *gin.Context) {
	post, ok := b.requestedPost(c)
	if !ok {
		return
	}

	if err := b.store.DeletePost(post.ID); err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Could not delete post",
		})
		return
	}

	cache.ClearPost(post.ID)
	c.Redirect(http.StatusFound, "/")
}

// requestedPost resolves the :id param to a post, rendering 404 (or 400 for
// a malformed id) itself when it cannot.
func (b *BlogModule) requestedPost(c *gin.Context) (*models.Post, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{
			"error": "Invalid post id",
		})
		return nil, false
	}

	post, err := b.store.PostByID(id)
	if err != nil {
		if err == store.ErrNotFound {
			c.HTML(http.StatusNotFound, "error.html", gin.H{
				"error": "Post not found",
			})
			return nil, false
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Could not load post",
		})
		return nil, false
	}

	return post, true
}

func (b *BlogModule) sitemap(c *gin.Context) {
	domain := strings.TrimSuffix(domainFromEnv(c), "/")

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	for _, loc := range []string{"/", "/about", "/contact"} {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + domain + loc + "</loc>\n")
		sitemap.WriteString("    <changefreq>weekly</changefreq>\n")
		sitemap.WriteString("  </url>\n")
	}

	posts, err := b.store.Posts()
	if err == nil {
		for _, post := range posts {
			sitemap.WriteString("  <url>\n")
			sitemap.WriteString("    <loc>" + domain + "/post/" + strconv.Itoa(post.ID) + "</loc>\n")
			sitemap.WriteString("    <changefreq>monthly</changefreq>\n")
			sitemap.WriteString("  </url>\n")
		}
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}

func domainFromEnv(c *gin.Context) string {
	if d := os.Getenv("DOMAIN"); d != "" {
		return d
	}
	if host := c.Request.Host; host != "" {
		return "http://" + host
	}
	return "http://localhost:8080"
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// fall back to the raw content rather than breaking the page
		return content
	}
	return buf.String()
}
