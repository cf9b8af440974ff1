package model

import (
	"os"

	"github.com/google/uuid"
)

// SessionConfig identifies one invocation: which thread the turn belongs to
// and, optionally, which user asked. Immutable for the duration of a turn.
type SessionConfig struct {
	ThreadID string
	UserID   string
}

// Environment variable names recognized as session overrides.
const (
	EnvThreadID = "THREAD_ID"
	EnvUserID   = "USER_ID"
)

// ResolveSession applies layered resolution per option: environment
// override first, then the caller-supplied value, then the default. The
// first non-empty value wins. ThreadID defaults to a fresh uuid so a turn
// always has a checkpoint key.
func ResolveSession(caller SessionConfig) SessionConfig {
	return SessionConfig{
		ThreadID: resolveOption(EnvThreadID, caller.ThreadID, uuid.NewString()),
		UserID:   resolveOption(EnvUserID, caller.UserID, ""),
	}
}

func resolveOption(envKey, callerValue, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if callerValue != "" {
		return callerValue
	}
	return defaultValue
}
