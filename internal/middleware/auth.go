package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ActorClaims are the JWT claims the API accepts. Subject is the user id.
type ActorClaims struct {
	TenantID string      `json:"tenant_id"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateActorToken signs an HS256 token for actor, valid for ttl.
func GenerateActorToken(actor domain.Actor, secret, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		TenantID: actor.TenantID,
		Role:     actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actor.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseActorToken validates the signature and standard claims and returns the actor.
func ParseActorToken(tokenString, secret, issuer string) (domain.Actor, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, err
	}
	if !token.Valid {
		return domain.Actor{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" || claims.TenantID == "" || !claims.Role.IsValid() {
		return domain.Actor{}, jwt.ErrTokenInvalidClaims
	}
	return domain.Actor{TenantID: claims.TenantID, UserID: claims.Subject, Role: claims.Role}, nil
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens
// and stores the resulting actor in the request context.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		actor, err := ParseActorToken(parts[1], jwtSecret, issuer)
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		enrichedLogger := logger.With(
			slog.String("user_id", actor.UserID),
			slog.String("tenant_id", actor.TenantID),
		)
		ctx := WithLogger(WithActor(c.Request.Context(), actor), enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
