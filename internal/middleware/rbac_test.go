package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-fees-api/internal/models"
)

func runRBAC(t *testing.T, claims *models.JWTClaims, paramID string, allowed ...string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/protected", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}

	RBAC(allowed...)(c)
	return c, rec
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	c, rec := runRBAC(t, nil, "", string(models.RoleAdmin))
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}
	c, _ := runRBAC(t, claims, "", string(models.RoleAdmin), string(models.RoleTeacher))
	assert.False(t, c.IsAborted())
}

func TestRBACRejectsOtherRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	c, rec := runRBAC(t, claims, "", string(models.RoleAdmin))
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACSelfMatchesLinkedRecord(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent, SubjectID: "stu-42"}
	c, _ := runRBAC(t, claims, "stu-42", string(models.RoleAdmin), "SELF")
	assert.False(t, c.IsAborted())
}

func TestRBACSelfRejectsOtherRecord(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent, SubjectID: "stu-42"}
	c, rec := runRBAC(t, claims, "stu-99", string(models.RoleAdmin), "SELF")
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACSelfRequiresLinkedSubject(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	c, rec := runRBAC(t, claims, "u-1", "SELF")
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
