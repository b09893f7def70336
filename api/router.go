// Package api is the HTTP surface of Jobly: a gin router with request-id,
// logging and JWT middleware, role gates and one handler set per entity.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/repo"
)

func init() {
	// Request bodies are strict: a field the params struct does not declare
	// is a 400.
	binding.EnableDecoderDisallowUnknownFields = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName reports validation failures under the JSON (or query) name the
// client used.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Store is the part of *db.DB the health endpoint reads.
type Store interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// Deps are the collaborators the router is built from.
type Deps struct {
	Companies repo.CompanyRepository
	Jobs      repo.JobRepository
	Users     repo.UserRepository
	Tokens    *auth.Tokens

	// Store and Counters feed GET /health. Both may be nil.
	Store    Store
	Counters *db.QueryCounters

	Logger *slog.Logger

	// CORSOrigins lists allowed origins; empty or "*" allows any origin.
	CORSOrigins []string
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(
		requestID(),
		requestLogger(d.Logger),
		recovery(d.Logger),
		cors.New(corsConfig(d.CORSOrigins)),
		authenticateJWT(d.Tokens),
	)
	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, db.NotFoundf("not found"))
	})

	h := &handlers{Deps: d}

	r.GET("/health", h.health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/token", h.token)
		authGroup.POST("/register", h.register)
	}

	companies := r.Group("/companies")
	{
		companies.POST("", ensureAdmin(), h.createCompany)
		companies.GET("", h.listCompanies)
		companies.GET("/:handle", h.getCompany)
		companies.PATCH("/:handle", ensureAdmin(), h.updateCompany)
		companies.DELETE("/:handle", ensureAdmin(), h.removeCompany)
	}

	jobs := r.Group("/jobs")
	{
		jobs.POST("", ensureAdmin(), h.createJob)
		jobs.GET("", h.listJobs)
		jobs.GET("/:id", h.getJob)
		jobs.PATCH("/:id", ensureAdmin(), h.updateJob)
		jobs.DELETE("/:id", ensureAdmin(), h.removeJob)
	}

	users := r.Group("/users", ensureLoggedIn())
	{
		users.POST("", ensureAdmin(), h.createUser)
		users.GET("", ensureAdmin(), h.listUsers)
		users.GET("/:username", ensureCorrectUserOrAdmin(), h.getUser)
		users.PATCH("/:username", ensureCorrectUserOrAdmin(), h.updateUser)
		users.DELETE("/:username", ensureCorrectUserOrAdmin(), h.removeUser)
		users.POST("/:username/jobs/:id", ensureCorrectUserOrAdmin(), h.applyToJob)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", headerRequestID}
	cfg.ExposeHeaders = []string{headerRequestID}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

type handlers struct {
	Deps
}
