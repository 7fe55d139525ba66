package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
)

const (
	actorKey  = "actor"
	userIDKey = "userID"
)

// ActorResolver loads the current role set of a token subject
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (auth.Actor, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *pkgauth.JWTService
	actors     ActorResolver
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *pkgauth.JWTService, actors ActorResolver, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		actors:     actors,
		logger:     logger,
	}
}

// JWTAuth validates the bearer token and attaches the resolved actor to the request
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := pkgauth.ExtractBearerToken(authHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, pkgauth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			} else if errors.Is(err, pkgauth.ErrInvalidFormat) {
				errorDetails = "Invalid token format"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed")
			errorDetail = errorDetail.WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		// Roles are reloaded on every request; the token only proves identity
		actor, err := m.actors.ResolveActor(c.Request.Context(), claims.UserID)
		if err != nil {
			m.logger.Warn().Err(err).Str("userId", claims.UserID.String()).Msg("Rejected token for unusable account")
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(userIDKey, actor.UserID)
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RoleRequired lets the request through when the actor holds any of the roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("User information not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		for _, role := range roles {
			if actor.HasRole(role) {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")
		errorDetail = errorDetail.WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// ActorFrom returns the actor attached by JWTAuth
func ActorFrom(c *gin.Context) (auth.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return auth.Actor{}, false
	}
	actor, ok := v.(auth.Actor)
	return actor, ok
}

// CurrentActor returns the attached actor or the anonymous actor
func CurrentActor(c *gin.Context) auth.Actor {
	actor, _ := ActorFrom(c)
	return actor
}
