package security

import (
	"errors"
	"time"

	"linux_challenge/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken mints a token for either an operator or a participant;
// the role claim decides which routes the bearer may reach.
func GenerateToken(actorID, role string) (string, error) {
	claims := jwt.MapClaims{
		"actor_id": actorID,
		"role":     role,
		"exp":      time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":      time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetActorIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["actor_id"].(string)
	if !ok {
		return "", errors.New("actor_id claim is missing or not a string")
	}
	return id, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
