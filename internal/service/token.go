package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService выпускает и проверяет подписанные HS256 токены доступа.
// Токен несёт единственный claim — email вызывающего; внешний коллаборатор
// аутентификации в терминах системы: да/нет плюс identity claim
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService создаёт новый TokenService с секретом подписи и временем жизни токена
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue выпускает токен для указанного email
func (s *TokenService) Issue(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email is required")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок жизни токена и возвращает email из claims.
// Любая проблема с токеном возвращается как ErrUnauthorized
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrUnauthorized
	}

	return email, nil
}
