package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/validation"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	validation.Install()

	router := gin.New()
	// Keys are percent-escaped in links, so an escaped slash stays inside
	// its path segment.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.HandleMethodNotAllowed = true

	router.Use(RequestIDMiddleware(log))
	router.Use(AccessLogMiddleware())
	router.Use(RecoveryMiddleware())

	router.NoRoute(func(c *gin.Context) {
		respondError(c, domainerrors.NotFound("No resource at "+c.Request.URL.Path))
	})
	router.NoMethod(func(c *gin.Context) {
		doc := mason.NewError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method "+c.Request.Method+" is not supported here")
		respondMason(c, http.StatusMethodNotAllowed, doc)
	})

	var pinger Pinger
	if cfg.Database != nil {
		pinger = cfg.Database
	}
	health := NewHealthController(pinger, cfg.Version)
	usersController := NewUsersController(cfg.Database, cfg.Auditor, cfg.BcryptCost)
	booksController := NewBooksController(cfg.Database, cfg.Auditor)
	clubsController := NewClubsController(cfg.Database, cfg.Auditor)
	reviewsController := NewReviewsController(cfg.Database, cfg.Auditor)
	commentsController := NewCommentsController(cfg.Database, cfg.Auditor)
	userBooksController := NewUserBooksController(cfg.Database, cfg.Auditor)

	router.GET("/", entryPoint(cfg.Version, cfg.AuditReader != nil))
	router.GET("/health", health.Status)

	// Users
	router.GET("/users", usersController.List)
	router.POST("/users", usersController.Create)
	router.GET("/users/:user", usersController.Get)
	router.PUT("/users/:user", usersController.Edit)
	router.DELETE("/users/:user", usersController.Delete)

	// Reading records
	router.GET("/users/:user/books", userBooksController.List)
	router.POST("/users/:user/books", userBooksController.Create)
	router.GET("/users/:user/books/:book", userBooksController.Get)
	router.PUT("/users/:user/books/:book", userBooksController.Edit)
	router.DELETE("/users/:user/books/:book", userBooksController.Ignore)
	router.POST("/users/:user/books/:book/restore", userBooksController.Restore)

	// Books
	router.GET("/books", booksController.List)
	router.POST("/books", booksController.Create)
	router.GET("/books/:book", booksController.Get)
	router.PUT("/books/:book", booksController.Edit)
	router.DELETE("/books/:book", booksController.Delete)

	// Reviews and their discussions
	router.GET("/books/:book/reviews", reviewsController.List)
	router.POST("/books/:book/reviews", reviewsController.Create)
	router.GET("/books/:book/reviews/:user", reviewsController.Get)
	router.PUT("/books/:book/reviews/:user", reviewsController.Edit)
	router.DELETE("/books/:book/reviews/:user", reviewsController.Delete)
	router.GET("/books/:book/reviews/:user/comments", reviewsController.Discussion)

	// Comments
	router.POST("/comments", commentsController.Create)
	router.GET("/comments/:uuid", commentsController.Get)
	router.PUT("/comments/:uuid", commentsController.Edit)
	router.DELETE("/comments/:uuid", commentsController.Delete)

	// Clubs, members and reading lists
	router.GET("/clubs", clubsController.List)
	router.POST("/clubs", clubsController.Create)
	router.GET("/clubs/:club", clubsController.Get)
	router.PUT("/clubs/:club", clubsController.Edit)
	router.DELETE("/clubs/:club", clubsController.Delete)
	router.GET("/clubs/:club/members", clubsController.Members)
	router.GET("/clubs/:club/members/:user", clubsController.GetMember)
	router.PUT("/clubs/:club/members/:user", clubsController.AddMember)
	router.DELETE("/clubs/:club/members/:user", clubsController.RemoveMember)
	router.GET("/clubs/:club/books", clubsController.Books)
	router.PUT("/clubs/:club/books/:book", clubsController.AddBook)
	router.DELETE("/clubs/:club/books/:book", clubsController.RemoveBook)

	// Audit trail
	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		router.GET("/audit", auditController.GetAuditEvents)
		router.GET("/audit/:type/*key", auditController.GetEntityHistory)
	}

	return router
}
