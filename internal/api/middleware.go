package api

import (
	"net/http"

	"courtflow/internal/errors"
	"courtflow/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal"

// requirePrincipal resolves the acting identity from the headers set by
// the authentication gateway upstream. Identity and role mapping are owned
// there; this layer only consumes the result, and the record store remains
// the real authorization boundary behind it.
func (s *Server) requirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, err := uuid.Parse(c.GetHeader("X-Actor-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Actor-ID header"})
			return
		}

		role := models.Role(c.GetHeader("X-Actor-Role"))
		switch role {
		case models.RoleJudge, models.RolePractitioner, models.RolePublic:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Actor-Role header"})
			return
		}

		c.Set(principalKey, models.Principal{
			ID:   actorID,
			Name: c.GetHeader("X-Actor-Name"),
			Role: role,
		})
		c.Next()
	}
}

func principal(c *gin.Context) models.Principal {
	return c.MustGet(principalKey).(models.Principal)
}

func caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps the error taxonomy onto HTTP statuses. Every failure
// is recoverable by the user re-invoking the action; nothing here retries.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeUnauthorized:
		status = http.StatusForbidden
	case errors.CodeSessionAlreadyActive, errors.CodeNoActiveSession:
		status = http.StatusConflict
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
