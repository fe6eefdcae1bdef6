package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/middleware"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/sirupsen/logrus"
)

// respondError writes the error body. Internal failures are logged and
// reported with a generic message.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}
	c.JSON(apperr.StatusCode(err), apperr.Body(err))
}

func bindError(err error) error {
	return apperr.Validation("Invalid JSON format: %v", err)
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid %s id: %s", what, raw)
	}
	return id, nil
}

// callerID is the account id of the authenticated caller.
func callerID(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return uuid.Nil, apperr.Authentication(apperr.CodeTokenMissing, "Authentication token is required")
	}
	uid, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, apperr.Authentication(apperr.CodeTokenInvalid, "Invalid or malformed token")
	}
	return uid, nil
}

// caller is the optional identity of a public route; anonymous when absent.
func caller(c *gin.Context) services.Caller {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return services.Caller{}
	}
	uid, err := uuid.Parse(id.UserID)
	if err != nil {
		return services.Caller{}
	}
	return services.Caller{ID: uid, AccountType: id.AccountType}
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HealthCheck reports that the process is serving.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
