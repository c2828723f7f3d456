package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clinicbook/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.AdminToken = "test-admin-token"

	r := gin.New()
	r.POST("/admin", AdminAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("Bearer test-admin-token"))
	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer wrong-token"))

	// An unset admin token refuses everything rather than matching empty.
	config.AppConfig.AdminToken = ""
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "))
}
