package pgdb

import (
	"errors"
	"testing"
)

func TestDSN(t *testing.T) {
	cfg := &Config{
		Host:     "localhost",
		Port:     5432,
		Username: "postgres",
		Password: "secret",
		DBName:   "app",
	}
	got := cfg.DSN()
	want := "host=localhost port=5432 user=postgres password=secret sslmode=disable dbname=app"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestDSNSSLAndOmissions(t *testing.T) {
	cfg := &Config{
		Host:     "db.internal",
		Port:     5433,
		Username: "admin",
		UseSSL:   true,
	}
	got := cfg.DSN()
	want := "host=db.internal port=5433 user=admin sslmode=require"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing host", Config{Port: 5432, Username: "u"}, ErrHostRequired},
		{"missing port", Config{Host: "h", Username: "u"}, ErrPortRequired},
		{"missing username", Config{Host: "h", Port: 5432}, ErrUsernameRequired},
		{"complete", Config{Host: "h", Port: 5432, Username: "u"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
