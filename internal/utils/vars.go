package utils

import "time"

const (
	DefaultEndpoint        = "http://localhost:8077/download"
	DefaultServerPort      = 8080 // port named in the download manager's own instructions
	DefaultTimeout         = 5 * time.Second
	DefaultAttempts        = 3
	DefaultDelay           = 1 * time.Second
	DefaultPayloadURL      = "https://example.com/test-file.zip"
	DefaultPayloadFilename = "test-file.zip"
	StatusPath             = "/status"
	RequestIDHeader        = "X-Request-ID"
	ToolUserAgent          = "dlprobe/1.0"
	MaxBodyBytes           = 1024 * 1024 // cap on response body kept for the trace
)
