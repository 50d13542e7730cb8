package middleware

import (
	"net/http"
	"strings"

	"github.com/aurum/backend/internal/infrastructure/auth"
	"github.com/aurum/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTBranchIDKey = "jwt_branch_id"
	JWTUsernameKey = "jwt_username"
	JWTRolesKey    = "jwt_roles"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
		},
		SkipPathPrefixes: nil,
		OnError:          nil,
		Logger:           nil,
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config.
// The acting branch is always taken from the validated token, never from
// request headers or bodies.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Check skip paths
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		// Check skip path prefixes
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Extract token from Authorization header
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		// Check Bearer prefix
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		// Validate token
		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		// Store claims in context for downstream use
		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTBranchIDKey, claims.BranchID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRolesKey, claims.Roles)

		// Also set in request context for logger
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithBranchID(ctx, log, claims.BranchID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("branch_id", claims.BranchID),
				zap.String("username", claims.Username),
			)
		}

		c.Next()
	}
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		errorCode = "TOKEN_NOT_VALID"
		errorMessage = "Token is not yet valid"
	case auth.ErrMissingBranchID, auth.ErrMissingUserID:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Token is missing required claims"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTBranchID retrieves the branch ID from JWT claims in context
func GetJWTBranchID(c *gin.Context) string {
	if branchID, exists := c.Get(JWTBranchIDKey); exists {
		if id, ok := branchID.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTUsername retrieves the username from JWT claims in context
func GetJWTUsername(c *gin.Context) string {
	if username, exists := c.Get(JWTUsernameKey); exists {
		if u, ok := username.(string); ok {
			return u
		}
	}
	return ""
}

// GetJWTRoles retrieves the roles from JWT claims in context
func GetJWTRoles(c *gin.Context) []string {
	if roles, exists := c.Get(JWTRolesKey); exists {
		if rs, ok := roles.([]string); ok {
			return rs
		}
	}
	return nil
}
