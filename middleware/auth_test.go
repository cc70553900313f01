package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"habitflow/models"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func roleContext(user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/statistics/users", nil)
	if user != nil {
		c.Set("user", *user)
	}
	return c, w
}

func TestRoleMiddlewareAllowsMatchingRole(t *testing.T) {
	c, w := roleContext(&models.User{Role: models.RoleAdmin})

	RoleMiddleware(models.RoleAdmin)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleMiddlewareForbidsOtherRole(t *testing.T) {
	c, w := roleContext(&models.User{Role: models.RoleUser})

	RoleMiddleware(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoleMiddlewareRejectsAnonymous(t *testing.T) {
	c, w := roleContext(nil)

	RoleMiddleware(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
