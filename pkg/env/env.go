package env

import (
	"fmt"
	"os"
	"time"
)

func ParseStringDefault(key, def string) string {
	str, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return str
}

func ParseDuration(key string) (time.Duration, error) {
	str, ok := os.LookupEnv(key)
	if !ok {
		return 0, notFoundError(key, "duration")
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, invalidValueError(key, "duration")
	}
	return d, nil
}

func ParseDurationDefault(key string, def time.Duration) time.Duration {
	d, err := ParseDuration(key)
	if err != nil {
		return def
	}
	return d
}

func notFoundError(key, varType string) error {
	return fmt.Errorf("env %s with type %s not found", key, varType)
}

func invalidValueError(key, varType string) error {
	return fmt.Errorf("env %s with type %s has invalid value", key, varType)
}
