package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxBcryptCost bounds the work factor so a misconfigured cost cannot stall logins.
	MaxBcryptCost = 14

	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetSessionSweepInterval() time.Duration
	GetSessionCookieName() string
	GetPasswordHasher() string
	GetBcryptCost() int
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetMaxSessionAge is the idle timeout after which a session is discarded.
func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
}

func (Security) GetSessionSweepInterval() time.Duration {
	return GetEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute)
}

func (Security) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "session_id")
}

func (Security) GetPasswordHasher() string {
	if GetEnv("PASSWORD_HASHER", HasherBcrypt) == HasherArgon2id {
		return HasherArgon2id
	}
	return HasherBcrypt
}

func (Security) GetBcryptCost() int {
	cost := GetEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	switch {
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > MaxBcryptCost:
		return MaxBcryptCost
	}
	return cost
}
