// Package session содержит сессионный токен аутентифицированного пользователя.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken возвращается, если пользователь не вошёл в систему.
var (
	ErrNoToken = errors.New("please log in")
	// ErrTokenExpired возвращается для просроченного сессионного токена.
	ErrTokenExpired = errors.New("session expired, please log in again")
)

// Session хранит Bearer-токен текущего пользователя и его идентификатор.
type Session struct {
	mu     sync.RWMutex
	token  string
	userID string
	now    func() time.Time
}

// New создаёт пустую сессию.
func New() *Session {
	return &Session{now: time.Now}
}

// SetToken сохраняет токен и идентификатор пользователя после входа.
func (s *Session) SetToken(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

// Clear очищает сессию при выходе.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = ""
}

// UserID возвращает идентификатор текущего пользователя.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Token возвращает действующий токен. Отсутствие токена и истёкший срок
// действия различаются как отдельные ошибки.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoToken
	}

	// Срок действия проверяется локально по claim exp, подпись проверяет
	// бэкенд. Непрозрачные токены без exp принимаются как есть.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			if exp.Before(s.now()) {
				return "", ErrTokenExpired
			}
		}
	}

	return s.token, nil
}
