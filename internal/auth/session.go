package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const CookieName = "taskboard_session"

var (
	ErrMalformed = errors.New("неверный формат сессии")
	ErrSignature = errors.New("неверная подпись сессии")
	ErrExpired   = errors.New("сессия истекла")
)

// Sessions подписывает и проверяет cookie сессии вида userID.expires.signature.
// Выдачей cookie занимается провайдер входа, здесь только проверка.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Sessions) Sign(userID string) string {
	expires := s.now().Add(s.ttl).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(userID)) + "." + strconv.FormatInt(expires, 10)
	return payload + "." + s.sign(payload)
}

func (s *Sessions) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrMalformed
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(s.sign(payload))) {
		return "", ErrSignature
	}

	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrMalformed
	}
	if s.now().Unix() > expires {
		return "", ErrExpired
	}

	userID, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(userID) == 0 {
		return "", ErrMalformed
	}
	return string(userID), nil
}

// FromRequest достаёт пользователя из cookie запроса, пустая строка если сессии нет
func (s *Sessions) FromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", nil
	}
	return s.Verify(c.Value)
}

// Cookie собирает cookie для пользователя
func (s *Sessions) Cookie(userID string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    s.Sign(userID),
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

type ctxKey struct{}

func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext возвращает id вошедшего пользователя или пустую строку
func UserFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ctxKey{}).(string)
	return userID
}
