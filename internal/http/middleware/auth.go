package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/minaret-io/minaret/internal/model"
)

// is returned when email/password don't match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// uses bcrypt to hash a plaintext password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// compares a bcrypt hash with the plaintext.
func CheckPassword(hash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

// retrieves *model.Subscriber from Gin context (after JWTMiddleware has run).
func GetCurrentSubscriber(c *gin.Context) (*model.Subscriber, bool) {
	s, exists := c.Get("currentSubscriber")
	if !exists {
		return nil, false
	}
	subscriber, ok := s.(*model.Subscriber)
	return subscriber, ok
}
