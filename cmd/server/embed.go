//go:build embed
// +build embed

package main

import (
	"log"
	"net/http"
	"strings"

	"houseprice/internal/web"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the stylesheet and assets compiled into the binary
func setupStaticFiles(router *gin.Engine) {
	log.Println("📦 Using embedded static assets")

	static, err := web.Static()
	if err != nil {
		log.Fatalf("Failed to get static subdirectory: %v", err)
	}
	router.StaticFS("/static", http.FS(static))

	router.NoRoute(notFound)
}

func notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
		return
	}
	c.Redirect(http.StatusFound, "/predict")
}
