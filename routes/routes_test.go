package routes

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterExposesSingleResourceAndAdminRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		http.MethodGet + " /api/habits/:id",
		http.MethodGet + " /api/categories/:id",
		http.MethodGet + " /api/daily-tasks/:id",
		http.MethodGet + " /api/statistics/users",
		http.MethodGet + " /api/completions/today",
	}
	for _, route := range want {
		assert.True(t, registered[route], "route not registered: %s", route)
	}
}
