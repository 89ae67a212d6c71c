package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("CAMPWORKS_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("CAMPWORKS_JWT_ISSUER")
	if issuer == "" {
		issuer = "campworks"
	}

	// original deployment issued 7-day tokens
	dur := 7 * 24 * time.Hour
	if ttl := os.Getenv("CAMPWORKS_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			dur = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: dur,
	}
}

type ServerConfig struct {
	Addr string
	Env  string // "development" or "production"
}

func LoadServerConfig() ServerConfig {
	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	return ServerConfig{Addr: addr, Env: env}
}

// IsProduction reports whether diagnostic detail should be stripped from
// API error responses.
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

type YouTubeConfig struct {
	APIKey    string
	ChannelID string
}

func LoadYouTubeConfig() YouTubeConfig {
	key := os.Getenv("YOUTUBE_API_KEY")

	channel := os.Getenv("YOUTUBE_CHANNEL_ID")
	if channel == "" {
		// the workshop's channel
		channel = "UCtZLTdzi3pPN4zRaIMRhQZw"
	}

	return YouTubeConfig{APIKey: key, ChannelID: channel}
}
