package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/smallbiznis/shipgraph/internal/permission"
)

func capabilityProbe(t *testing.T, adminKey, authorization string) bool {
	t.Helper()
	gin.SetMode(gin.TestMode)

	granted := false
	r := gin.New()
	r.Use(CapabilityMiddleware(adminKey))
	r.GET("/probe", func(c *gin.Context) {
		granted = permission.HasCapability(c.Request.Context(), permission.ManageShipping)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("probe returned %d", w.Code)
	}
	return granted
}

func TestCapabilityMiddleware(t *testing.T) {
	assert.True(t, capabilityProbe(t, "sekret", "Bearer sekret"))
	assert.False(t, capabilityProbe(t, "sekret", "Bearer wrong"))
	assert.False(t, capabilityProbe(t, "sekret", ""))
	assert.False(t, capabilityProbe(t, "", "Bearer anything"), "no admin key configured grants nothing")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken(""))
}
