package cmd

import (
	"fmt"
	"time"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// AssignRadiusMeters is the nearest-driver search radius applied to
	// every assignment request.
	AssignRadiusMeters float64

	// StalePingThreshold is the ping age beyond which a driver is reported
	// as stale. Advisory only.
	StalePingThreshold time.Duration
}

// PostgresDSN builds the lib/pq connection string from the DB settings.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}
