package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// AuthRequired validates the bearer token and sets the caller on the context.
func AuthRequired(secret string, log *logger.Logger) gin.HandlerFunc {
	return authenticate(secret, false, log)
}

// WebSocketAuth also accepts the token as a "token" query parameter, since
// browsers cannot set headers on a websocket handshake.
func WebSocketAuth(secret string, log *logger.Logger) gin.HandlerFunc {
	return authenticate(secret, true, log)
}

func authenticate(secret string, allowQuery bool, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c, allowQuery)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, utils.ErrTokenExpiry) {
				message = "Token expired"
			}
			log.LogSecurityEvent("invalid_token", "low", map[string]interface{}{
				"path":      c.FullPath(),
				"client_ip": c.ClientIP(),
				"reason":    err.Error(),
			})
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeUnauthorized, message)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", false
		}
		return tokenString, true
	}

	if allowQuery {
		if tokenString := c.Query("token"); tokenString != "" {
			return tokenString, true
		}
	}
	return "", false
}

// GetCaller returns the authenticated caller, or nil before AuthRequired ran.
func GetCaller(c *gin.Context) *models.Caller {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return nil
	}
	userID, ok := value.(primitive.ObjectID)
	if !ok {
		return nil
	}
	return &models.Caller{UserID: userID, Email: c.GetString(ContextEmail)}
}
