package validator

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subdomainProbe struct {
	Subdomain string `binding:"subdomain"`
}

type roleProbe struct {
	Role string `binding:"userrole"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, Register())
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestSubdomainRule(t *testing.T) {
	v := engine(t)

	valid := []string{"maria", "my-academy", "a1b", "abc"}
	for _, s := range valid {
		assert.NoError(t, v.Struct(subdomainProbe{Subdomain: s}), s)
	}

	invalid := []string{
		"ab",               // too short
		"-maria",           // leading hyphen
		"maria-",           // trailing hyphen
		"ma ria",           // whitespace
		"maria.academy",    // dots
		"under_score",      // underscore
		strings.Repeat("a", 64), // too long
	}
	for _, s := range invalid {
		assert.Error(t, v.Struct(subdomainProbe{Subdomain: s}), s)
	}
}

func TestUserRoleRule(t *testing.T) {
	v := engine(t)

	for _, role := range []string{"student", "instructor", "admin"} {
		assert.NoError(t, v.Struct(roleProbe{Role: role}), role)
	}
	assert.Error(t, v.Struct(roleProbe{Role: "superuser"}))
}
