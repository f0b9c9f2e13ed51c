package config

import (
	"errors"
	"flag"
	"time"

	"github.com/atinyakov/GophTube/internal/client/api"
)

// ClientOptions holds the configuration of the terminal client.
type ClientOptions struct {
	// Command is a single shell command to run instead of the interactive loop.
	Command string `json:"-"`
	// BaseURL is the backend address including /api/v1.
	BaseURL string `json:"base_url"`
	// CAFile trusts an extra certificate authority for HTTPS backends.
	CAFile string `json:"ca_file"`
	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`
	// Timeout bounds every request.
	Timeout Duration `json:"timeout"`
	// MetricsAddr serves request metrics when set.
	MetricsAddr string `json:"metrics_address"`
	// CacheSize enables the GET response cache when positive.
	CacheSize int      `json:"cache_size"`
	CacheTTL  Duration `json:"cache_ttl"`
	// RefreshInterval is the token renewal period when the expiry is unknown.
	RefreshInterval Duration `json:"refresh_interval"`
	// SessionFile keeps the session cookies between runs. Empty disables it.
	SessionFile   string `json:"session_file"`
	SessionSecret string `json:"session_secret"`
	// ShowVersion prints build metadata and exits.
	ShowVersion bool `json:"-"`
	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ParseClient parses args (without the program name), the config file and
// the environment.
func ParseClient(args []string) (*ClientOptions, error) {
	o := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&o.Command, "cmd", "", "run one shell command and exit")
	fs.StringVar(&o.BaseURL, "url", api.DefaultBaseURL, "backend base URL")
	fs.StringVar(&o.CAFile, "ca", "", "path to CA cert")
	fs.StringVar(&o.LogLevel, "l", "warn", "log level")
	fs.DurationVar(&o.Timeout.Duration, "timeout", 30*time.Second, "request timeout")
	fs.StringVar(&o.MetricsAddr, "metrics", "", "serve request metrics on ip:port")
	fs.IntVar(&o.CacheSize, "cache-size", 0, "GET response cache entries, 0 disables")
	fs.DurationVar(&o.CacheTTL.Duration, "cache-ttl", 30*time.Second, "GET response cache lifetime")
	fs.DurationVar(&o.RefreshInterval.Duration, "refresh", 10*time.Minute, "token refresh interval when expiry is unknown")
	fs.StringVar(&o.SessionFile, "session", "", "file keeping the session between runs")
	fs.StringVar(&o.SessionSecret, "session-secret", "", "encrypt the session file with this secret")
	fs.BoolVar(&o.ShowVersion, "version", false, "show build version and date")
	configFlags(fs, &o.Config, "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	envString("CONFIG", &o.Config)
	if err := loadFile(o.Config, o); err != nil {
		return nil, err
	}

	envString("API_BASE_URL", &o.BaseURL)
	envString("CA_FILE", &o.CAFile)
	envString("LOG_LEVEL", &o.LogLevel)
	envString("METRICS_ADDRESS", &o.MetricsAddr)
	envString("SESSION_FILE", &o.SessionFile)
	envString("SESSION_SECRET", &o.SessionSecret)
	if err := errors.Join(
		envDuration("REQUEST_TIMEOUT", &o.Timeout),
		envInt("CACHE_SIZE", &o.CacheSize),
		envDuration("CACHE_TTL", &o.CacheTTL),
		envDuration("REFRESH_INTERVAL", &o.RefreshInterval),
	); err != nil {
		return nil, err
	}
	return o, nil
}

// APIOptions translates the options into client construction options.
func (o *ClientOptions) APIOptions() []api.Option {
	opts := []api.Option{api.WithTimeout(o.Timeout.Duration)}
	if o.CAFile != "" {
		opts = append(opts, api.WithCAFile(o.CAFile))
	}
	if o.CacheSize > 0 {
		opts = append(opts, api.WithCache(o.CacheSize, o.CacheTTL.Duration))
	}
	return opts
}
