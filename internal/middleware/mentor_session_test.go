package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conectamentor/mentoria-api/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(tm *jwt.TokenManager) *gin.Engine {
	router := gin.New()
	router.GET("/whoami", MentorSession(tm, "", false), func(c *gin.Context) {
		session, err := GetMentorSession(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"mentor_id": session.MentorID})
	})
	return router
}

func TestMentorSession_ValidCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentoria-api", 24)
	token, err := tm.GenerateToken(7, "mentor@example.cl", "Ana Contreras")
	require.NoError(t, err)

	router := newSessionRouter(tm)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", http.NoBody)
	req.AddCookie(&http.Cookie{Name: MentorSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mentor_id":7}`, w.Body.String())
}

func TestMentorSession_MissingCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentoria-api", 24)

	router := newSessionRouter(tm)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMentorSession_TamperedToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentoria-api", 24)
	other := jwt.NewTokenManager("another-secret", "mentoria-api", 24)
	token, err := other.GenerateToken(7, "mentor@example.cl", "Ana Contreras")
	require.NoError(t, err)

	router := newSessionRouter(tm)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", http.NoBody)
	req.AddCookie(&http.Cookie{Name: MentorSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Invalid cookie is cleared on rejection
	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == MentorSessionCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
