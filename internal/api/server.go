package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gengallery/internal/auth"
	"gengallery/internal/config"
	"gengallery/internal/store"
)

// Server wraps the REST API server.
type Server struct {
	handler *Handler
	router  *gin.Engine
}

// NewServer wires the gallery routes: public submission and listing,
// file serving for the upload/generated/thumbnail roots, and the
// session-gated admin review surface.
func NewServer(cfg *config.Config, st *store.Store, accounts *auth.AccountStore, log *logrus.Logger) *Server {
	handler := NewHandler(cfg, st, accounts, log)

	// gin.New() instead of gin.Default(); the access log format is our
	// own and skips the chatty static file routes.
	router := gin.New()

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if isStaticPath(param.Path) {
			return ""
		}
		return fmt.Sprintf("[%s] %s %s %d %s %s \"%s\" %s\n",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.ClientIP,
			param.Method,
			param.StatusCode,
			param.Latency,
			param.Path,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
	}))

	router.Use(auth.Sessions(cfg.Auth.SessionSecret))

	router.POST("/submit", maxBodySize(cfg.Upload.MaxBytes), handler.Submit)

	api := router.Group("/api")
	{
		api.GET("/records", handler.ListRecords)
		api.GET("/record/:id", handler.GetRecord)
		api.GET("/apps", handler.ListApps)

		admin := api.Group("/admin")
		{
			admin.POST("/login", handler.Login)
			admin.POST("/logout", handler.Logout)
			admin.GET("/check", handler.CheckSession)

			protected := admin.Group("")
			protected.Use(auth.RequireAdmin())
			{
				protected.POST("/review", handler.Review)
				protected.POST("/delete", handler.Delete)
				protected.GET("/stats", handler.Stats)
			}
		}
	}

	// Uploaded and derived files are served back by filename.
	router.Static("/uploads", cfg.Dirs.Uploads)
	router.Static("/generated", cfg.Dirs.Generated)
	router.Static("/thumbnails", cfg.Dirs.Thumbnails)

	ServeStaticFiles(router)

	return &Server{
		handler: handler,
		router:  router,
	}
}

// GetRouter returns the router.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func isStaticPath(path string) bool {
	for _, prefix := range []string{"/uploads/", "/generated/", "/thumbnails/", "/assets/"} {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// maxBodySize caps the request body; oversize submissions surface as a
// 413 instead of filling the disk.
func maxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
