package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config: 인증 서비스 설정
type Config struct {
	TokenSecret         []byte
	TokenTTL            time.Duration
	TokenIssuer         string
	BcryptCost          int
	SignInRatePerMinute float64
	SignInBurst         int
}

// DefaultConfig: 비밀 키를 제외한 기본값
func DefaultConfig() Config {
	return Config{
		TokenTTL:            24 * time.Hour,
		TokenIssuer:         "scoreboard",
		BcryptCost:          bcrypt.DefaultCost,
		SignInRatePerMinute: 10,
		SignInBurst:         5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TokenTTL <= 0 {
		c.TokenTTL = d.TokenTTL
	}
	if c.TokenIssuer == "" {
		c.TokenIssuer = d.TokenIssuer
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = d.BcryptCost
	}
	if c.SignInRatePerMinute <= 0 {
		c.SignInRatePerMinute = d.SignInRatePerMinute
	}
	if c.SignInBurst <= 0 {
		c.SignInBurst = d.SignInBurst
	}
	return c
}
