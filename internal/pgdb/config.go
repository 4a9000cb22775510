package pgdb

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors for the connectivity test.
var (
	ErrHostRequired     = errors.New("PostgreSQL host is required")
	ErrPortRequired     = errors.New("PostgreSQL port is required")
	ErrUsernameRequired = errors.New("PostgreSQL username is required")
)

// Config holds the database connection settings. All fields are optional;
// they are only validated when a connection is actually attempted.
// A zero Port means unset.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseSSL   bool
	DBName   string
}

// Validate checks the fields required to attempt a connection.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrHostRequired
	}
	if c.Port == 0 {
		return ErrPortRequired
	}
	if c.Username == "" {
		return ErrUsernameRequired
	}
	return nil
}

// DSN builds a keyword/value connection string from the configured fields.
func (c *Config) DSN() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("host=%s", c.Host))
	parts = append(parts, fmt.Sprintf("port=%d", c.Port))
	parts = append(parts, fmt.Sprintf("user=%s", c.Username))
	if c.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", c.Password))
	}
	if c.UseSSL {
		parts = append(parts, "sslmode=require")
	} else {
		parts = append(parts, "sslmode=disable")
	}
	if c.DBName != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", c.DBName))
	}
	return strings.Join(parts, " ")
}
