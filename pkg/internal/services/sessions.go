package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
)

const defaultSessionTTL = 14 * 24 * time.Hour

func SessionCookieName() string {
	if name := viper.GetString("security.cookie_name"); len(name) > 0 {
		return name
	}
	return "typeidea_session"
}

func SessionTTL() time.Duration {
	if ttl := viper.GetDuration("security.session_ttl"); ttl > 0 {
		return ttl
	}
	return defaultSessionTTL
}

func NewSessionToken(account models.Account) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(int(account.ID)),
		Issuer:    viper.GetString("id"),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL())),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(viper.GetString("security.secret")))
	if err != nil {
		return "", fmt.Errorf("unable to sign session: %v", err)
	}
	return signed, nil
}

// ReadSessionToken returns the account id a session token was issued to.
func ReadSessionToken(raw string) (uint, error) {
	if len(raw) == 0 {
		return 0, ErrInvalidSession
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(viper.GetString("security.secret")), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredSession
		}
		return 0, ErrInvalidSession
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidSession
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSession
	}
	return uint(id), nil
}

// GetSessionAccount resolves a session token to an active account.
func GetSessionAccount(raw string) (models.Account, error) {
	id, err := ReadSessionToken(raw)
	if err != nil {
		return models.Account{}, err
	}

	account, err := GetAccountWithID(id)
	if err != nil {
		return account, err
	}
	if !account.IsActive {
		return account, ErrInvalidSession
	}
	return account, nil
}
