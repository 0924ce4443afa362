package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/droneanalytics/internal/entity"
	userRepo "anoa.com/droneanalytics/internal/modules/user/repository"
	"anoa.com/droneanalytics/internal/testutil"
	"anoa.com/droneanalytics/pkg/credential"
	"anoa.com/droneanalytics/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *credential.Manager, *entity.User, *entity.User) {
	t.Helper()

	db := testutil.NewDB(t)
	member := testutil.CreateUser(t, db, "member")
	admin := testutil.CreateUser(t, db, "boss")
	require.NoError(t, db.Model(admin).Update("role", entity.RoleAdmin).Error)

	credentials := credential.NewManager("test-secret", time.Hour)
	auth := NewAuthMiddleware(userRepo.NewUserRepository(db), credentials)

	r := gin.New()
	r.GET("/private", auth.RequireAuth(), func(c *gin.Context) {
		id, err := response.GetUserID(c)
		require.NoError(t, err)
		c.String(http.StatusOK, id.String())
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r, credentials, member, admin
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, credentials, member, _ := newRouter(t)

	valid, _, err := credentials.IssueToken(member.ID)
	require.NoError(t, err)

	foreign, _, err := credential.NewManager("other-secret", time.Hour).IssueToken(member.ID)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantBody      string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"error":"Access token required"}`},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, `{"error":"Access token required"}`},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, `{"error":"Access token required"}`},
		{"garbage token", "Bearer nope", http.StatusForbidden, `{"error":"Invalid or expired token"}`},
		{"other secret", "Bearer " + foreign, http.StatusForbidden, `{"error":"Invalid or expired token"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/private", tt.authorization)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}

	t.Run("valid token", func(t *testing.T) {
		w := get(r, "/private", "Bearer "+valid)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, member.ID.String(), w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	r, credentials, member, admin := newRouter(t)

	memberToken, _, err := credentials.IssueToken(member.ID)
	require.NoError(t, err)
	adminToken, _, err := credentials.IssueToken(admin.ID)
	require.NoError(t, err)
	ghostToken, _, err := credentials.IssueToken(uuid.New())
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", "Bearer "+memberToken).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", "Bearer "+ghostToken).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", "Bearer "+adminToken).Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc "))
	assert.Empty(t, bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken("Token abc"))
}
