package utils

import (
	"net/http"
	"net/url"
	"time"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ProbeHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewProbeHTTPClient(cfg HTTPClientConfig) *ProbeHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	// Probes must hit the server exactly once each, so nothing is pooled
	// or retried underneath us.
	transport := &http.Transport{
		DisableKeepAlives: true,
		MaxConnsPerHost:   1,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			log := GetLogger("http-client")
			log.Error().Err(err).Str("proxy", cfg.ProxyURL).Msg("Invalid proxy URL, proceeding without proxy")
		}
	}
	return &ProbeHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

func (p *ProbeHTTPClient) Timeout() time.Duration {
	return p.client.Timeout
}

// Do adds the configured headers without replacing any the caller already
// set, so Content-Type and the request ID always reach the server intact.
func (p *ProbeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	for k, v := range p.config.Headers {
		if req.Header.Get(k) != "" {
			continue
		}
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" {
		if p.config.UserAgent != "" {
			req.Header.Set("User-Agent", p.config.UserAgent)
		} else {
			req.Header.Set("User-Agent", ToolUserAgent)
		}
	}
	return p.client.Do(req)
}
