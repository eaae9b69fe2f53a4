package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/auth"
	"talent-hub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the back-office token claims. Role is one of the domain roles.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies a bearer token and stores the operator identity on the context.
// HS256 tokens are checked against secret; RS256 tokens against jwks when it is set.
func AuthMiddleware(secret string, jwks *auth.Provider) gin.HandlerFunc {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	if jwks != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if secret == "" {
				return nil, errors.New("JWT_SECRET is not configured")
			}
			return []byte(secret), nil
		case *jwt.SigningMethodRSA:
			if jwks == nil {
				return nil, errors.New("no JWKS provider configured")
			}
			return jwks.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}

	return func(c *gin.Context) {
		tokenString, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(tokenString, &claims, keyFunc, jwt.WithValidMethods(methods))
		if err != nil || !token.Valid {
			if err == nil {
				err = errors.New("token invalid")
			}
			logger.Log.Info("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		if claims.Subject == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}
		if !domain.IsKnownRole(claims.Role) {
			response.Error(c, http.StatusForbidden, "Your role has no access to this service", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), claims.Subject)
		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyUserRole), claims.Role)

		c.Next()
	}
}
