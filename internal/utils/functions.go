package utils

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" {
				result[key] = value
			}
		}
	}
	return result
}

// includes logger
func ReadDownloadRequest(filePath string) (DownloadRequest, error) {
	log := GetLogger("config")
	var req DownloadRequest
	data, err := os.ReadFile(filePath)
	if err != nil {
		return req, fmt.Errorf("error reading payload file: %w", err)
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("error parsing payload file: %w", err)
	}
	if req.URL == "" {
		return req, fmt.Errorf("payload file %s has no url", filePath)
	}
	log.Debug().Str("url", req.URL).Str("filename", req.Filename).Msg("Payload loaded from YAML")
	return req, nil
}

// EndpointPort returns the port a request to rawURL would connect to,
// falling back to the scheme default when none is given.
func EndpointPort(rawURL string) (int, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	port := parsed.Port()
	if port == "" {
		switch parsed.Scheme {
		case "https":
			return 443, nil
		case "http":
			return 80, nil
		default:
			return 0, fmt.Errorf("no port for scheme %q", parsed.Scheme)
		}
	}
	return strconv.Atoi(port)
}

// StatusURL rewrites a download endpoint into the server's status URL.
func StatusURL(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	parsed.Path = StatusPath
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

func HostPort(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if parsed.Port() != "" {
		return parsed.Host
	}
	port, err := EndpointPort(rawURL)
	if err != nil {
		return parsed.Host
	}
	return net.JoinHostPort(parsed.Hostname(), strconv.Itoa(port))
}
