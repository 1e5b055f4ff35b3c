package handler

import (
	"net/http"

	"fluxgen-backend/web"

	"github.com/gin-gonic/gin"
)

// Index 返回内嵌的单页表单
func Index(c *gin.Context) {
	page, err := web.FS.ReadFile("index.html")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
