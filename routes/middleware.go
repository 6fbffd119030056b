package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

const userClaimsKey = "userClaims"

type jwtClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware validates the Bearer token on protected routes and stores the
// decoded claims on the echo context for downstream handlers.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractBearerToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: No token provided"})
			}

			claims := &jwtClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				c.Logger().Warnf("Invalid JWT token: %v", err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: Invalid or expired token"})
			}

			c.Set(userClaimsKey, &shared.UserClaims{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   claims.Role,
				Issuer: claims.Issuer,
			})
			return next(c)
		}
	}
}

// RequireAdminRole gates admin routes; JWTMiddleware must run first.
func RequireAdminRole() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetUserClaims(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			if claims.Role != "admin" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin role required"})
			}
			return next(c)
		}
	}
}

// GetUserClaims returns the decoded JWT claims for the current request, or
// nil when the route is unauthenticated.
func GetUserClaims(c echo.Context) *shared.UserClaims {
	claims, _ := c.Get(userClaimsKey).(*shared.UserClaims)
	return claims
}

func extractBearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
