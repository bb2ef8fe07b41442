package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-workorder-service/config"
	"github.com/tnqbao/gau-workorder-service/entity"
	"github.com/tnqbao/gau-workorder-service/workflow"

	"strings"
)

func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

func ParseToken(tokenString string, config *config.EnvConfig) (*jwt.Token, error) {
	secret := []byte(config.JWT.SecretKey)
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// InjectClaimsToContext stores the authenticated actor identity in the gin
// context. The engine trusts these claims as-is; issuing and validating
// credentials happens upstream.
func InjectClaimsToContext(c *gin.Context, claims jwt.MapClaims) error {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return errors.New("invalid user_id claim")
	}
	c.Set("user_id", userID)

	name, ok := claims["name"].(string)
	if !ok || name == "" {
		return errors.New("invalid name claim")
	}
	c.Set("user_name", name)

	if role, ok := claims["role"].(string); ok {
		c.Set("user_role", role)
	} else {
		c.Set("user_role", "")
	}
	return nil
}

// GetActorFromContext rebuilds the caller identity injected by the auth
// middleware.
func GetActorFromContext(c *gin.Context) (workflow.Actor, error) {
	userID := c.GetString("user_id")
	if userID == "" {
		return workflow.Actor{}, errors.New("user_id is missing from context")
	}
	name := c.GetString("user_name")
	if name == "" {
		return workflow.Actor{}, errors.New("user_name is missing from context")
	}
	return workflow.Actor{
		ID:   userID,
		Name: name,
		Role: entity.UserRole(c.GetString("user_role")),
	}, nil
}
