package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// ServeStaticFiles serves the web frontend when a built bundle is
// present next to the binary.
func ServeStaticFiles(router *gin.Engine) {
	distPath := "./web/dist"

	if _, err := os.Stat(distPath); err == nil {
		router.StaticFile("/", filepath.Join(distPath, "index.html"))
		router.Static("/assets", filepath.Join(distPath, "assets"))

		// SPA routing: unknown paths fall back to the app shell.
		router.NoRoute(func(c *gin.Context) {
			c.File(filepath.Join(distPath, "index.html"))
		})
	} else {
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Web frontend not built. Build web/ and restart to serve the gallery UI.",
			})
		})
	}
}
