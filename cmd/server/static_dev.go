//go:build !embed
// +build !embed

package main

import (
	"log"
	"net/http"
	"strings"

	"houseprice/internal/web"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves assets from disk so stylesheet edits show up without a rebuild
func setupStaticFiles(router *gin.Engine) {
	log.Println("🔧 Using local filesystem for static assets (development mode)")
	log.Printf("   Serving %s; run from the repository root", web.StaticDir)

	router.Static("/static", web.StaticDir)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.Redirect(http.StatusFound, "/predict")
	})
}
