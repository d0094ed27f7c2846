package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tanq16/dlprobe/internal/utils"
)

var (
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrInvalidAttempts = errors.New("invalid attempts")
	ErrInvalidDelay    = errors.New("invalid delay")
	ErrInvalidPort     = errors.New("invalid server port")
)

const EnvPrefix = "DLPROBE"

// Config holds everything a probe or campaign needs. Keys match the
// long flag names so flags, config file and DLPROBE_* env vars line up.
type Config struct {
	Endpoint    string        `mapstructure:"endpoint"`     // download endpoint, authoritative for the port
	Timeout     time.Duration `mapstructure:"timeout"`      // per request
	Attempts    int           `mapstructure:"attempts"`     // campaign size
	Delay       time.Duration `mapstructure:"delay"`        // wait between campaign attempts
	ServerPort  int           `mapstructure:"server-port"`  // port the operator expects the server on; 0 disables the check
	UserAgent   string        `mapstructure:"user-agent"`
	Headers     []string      `mapstructure:"header"`       // "Key: Value"
	ProxyURL    string        `mapstructure:"proxy"`
	PayloadFile string        `mapstructure:"payload-file"` // YAML payload, overrides url/filename
	URL         string        `mapstructure:"url"`          // payload url
	Filename    string        `mapstructure:"filename"`     // payload filename
	Preflight   bool          `mapstructure:"preflight"`    // check /status before the scenario
	Debug       bool          `mapstructure:"debug"`
}

func New() *Config {
	return &Config{
		Endpoint:   utils.DefaultEndpoint,
		Timeout:    utils.DefaultTimeout,
		Attempts:   utils.DefaultAttempts,
		Delay:      utils.DefaultDelay,
		ServerPort: utils.DefaultServerPort,
		UserAgent:  utils.ToolUserAgent,
		URL:        utils.DefaultPayloadURL,
		Filename:   utils.DefaultPayloadFilename,
	}
}

// SetDefaults registers the values of New on v.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("attempts", d.Attempts)
	v.SetDefault("delay", d.Delay)
	v.SetDefault("server-port", d.ServerPort)
	v.SetDefault("user-agent", d.UserAgent)
	v.SetDefault("proxy", "")
	v.SetDefault("payload-file", "")
	v.SetDefault("url", d.URL)
	v.SetDefault("filename", d.Filename)
	v.SetDefault("preflight", false)
	v.SetDefault("debug", false)
}

// Load reads the optional config file and the environment into a Config.
// Flags must already be bound to v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate returns an error for values no probe can run with, and
// warnings for values that are usable but suspicious.
func (c *Config) Validate() ([]string, error) {
	parsed, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidEndpoint, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, c.Endpoint)
	}
	port, err := utils.EndpointPort(c.Endpoint)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: bad port in %q", ErrInvalidEndpoint, c.Endpoint)
	}
	if c.Timeout <= 0 {
		return nil, fmt.Errorf("%w: %s (must be positive)", ErrInvalidTimeout, c.Timeout)
	}
	if c.Attempts < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidAttempts, c.Attempts)
	}
	if c.Delay < 0 {
		return nil, fmt.Errorf("%w: %s (must not be negative)", ErrInvalidDelay, c.Delay)
	}
	if c.ServerPort < 0 || c.ServerPort > 65535 {
		return nil, fmt.Errorf("%w: %d (must be 0-65535)", ErrInvalidPort, c.ServerPort)
	}

	var warnings []string
	if c.ServerPort != 0 && c.ServerPort != port {
		warnings = append(warnings, fmt.Sprintf(
			"endpoint port %d differs from expected server port %d; requests go to %d",
			port, c.ServerPort, port))
	}
	if c.PayloadFile == "" && c.URL == "" {
		warnings = append(warnings, "payload url is empty; the server will likely reject it")
	}
	return warnings, nil
}

func (c *Config) HTTPClientConfig() utils.HTTPClientConfig {
	proxyURL, username, password := splitProxyAuth(c.ProxyURL)
	return utils.HTTPClientConfig{
		Timeout:       c.Timeout,
		ProxyURL:      proxyURL,
		ProxyUsername: username,
		ProxyPassword: password,
		UserAgent:     c.UserAgent,
		Headers:       utils.ParseHeaderArgs(c.Headers),
	}
}

// Payload builds the request body from the payload file when one is set,
// otherwise from the url and filename keys.
func (c *Config) Payload() (utils.DownloadRequest, error) {
	if c.PayloadFile != "" {
		return utils.ReadDownloadRequest(c.PayloadFile)
	}
	return utils.DownloadRequest{URL: c.URL, Filename: c.Filename}, nil
}

func splitProxyAuth(proxy string) (string, string, string) {
	if proxy == "" {
		return "", "", ""
	}
	parsed, err := url.Parse(proxy)
	if err != nil || parsed.User == nil {
		return proxy, "", ""
	}
	username := parsed.User.Username()
	password, _ := parsed.User.Password()
	parsed.User = nil
	return parsed.String(), username, password
}
