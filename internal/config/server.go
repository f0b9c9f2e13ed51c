package config

import (
	"errors"
	"flag"
	"time"
)

// ServerOptions holds the configuration of the development backend.
type ServerOptions struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`
	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`
	// JWTSecret signs access and refresh tokens.
	JWTSecret string `json:"jwt_secret"`
	// AccessTTL and RefreshTTL bound token lifetimes.
	AccessTTL  Duration `json:"access_ttl"`
	RefreshTTL Duration `json:"refresh_ttl"`
	// CertFile and KeyFile enable HTTPS when both are set.
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ParseServer parses args (without the program name), the config file and
// the environment.
func ParseServer(args []string) (*ServerOptions, error) {
	o := &ServerOptions{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&o.Address, "a", "localhost:8000", "run on ip:port server")
	fs.StringVar(&o.LogLevel, "l", "info", "log level")
	fs.StringVar(&o.JWTSecret, "secret", "", "token signing secret")
	fs.DurationVar(&o.AccessTTL.Duration, "access-ttl", 15*time.Minute, "access token lifetime")
	fs.DurationVar(&o.RefreshTTL.Duration, "refresh-ttl", 10*24*time.Hour, "refresh token lifetime")
	fs.StringVar(&o.CertFile, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&o.KeyFile, "tls-key", "", "path to TLS key")
	configFlags(fs, &o.Config, "config.json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	envString("CONFIG", &o.Config)
	if err := loadFile(o.Config, o); err != nil {
		return nil, err
	}

	envString("SERVER_ADDRESS", &o.Address)
	envString("LOG_LEVEL", &o.LogLevel)
	envString("JWT_SECRET", &o.JWTSecret)
	envString("TLS_CERT", &o.CertFile)
	envString("TLS_KEY", &o.KeyFile)
	if err := errors.Join(
		envDuration("ACCESS_TOKEN_TTL", &o.AccessTTL),
		envDuration("REFRESH_TOKEN_TTL", &o.RefreshTTL),
	); err != nil {
		return nil, err
	}

	if o.JWTSecret == "" {
		return nil, errors.New("jwt secret is required: set -secret or JWT_SECRET")
	}
	if (o.CertFile == "") != (o.KeyFile == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	return o, nil
}

// TLS reports whether HTTPS is configured.
func (o *ServerOptions) TLS() bool { return o.CertFile != "" }
