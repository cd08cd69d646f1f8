package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"inkwell/auth"
	"inkwell/blog"
	"inkwell/common"
	"inkwell/database"
	"inkwell/email"
	"inkwell/site"
	"inkwell/store"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db := common.ConnectDb(cfg.DbFile)
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	router := gin.Default()

	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("inkwell-session", cookieStore))

	router.LoadHTMLGlob("*/views/*.html")

	appStore := store.NewStore(db)

	authModule := auth.NewAuthModule(appStore)
	router.Use(authModule.LoadPrincipal)
	authModule.RegisterRoutes(router)

	blogModule := blog.NewBlogModule(appStore)
	blogModule.RegisterRoutes(router)

	mailer := email.NewMailer(cfg)
	siteModule := site.NewSiteModule(mailer)
	siteModule.RegisterRoutes(router)

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
