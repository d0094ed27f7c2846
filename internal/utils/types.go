package utils

// DownloadRequest is the body the browser extension posts to the
// download manager. Only url and filename are always sent.
type DownloadRequest struct {
	URL      string `json:"url" yaml:"url"`
	Filename string `json:"filename" yaml:"filename"`
	FileSize int64  `json:"fileSize,omitempty" yaml:"fileSize,omitempty"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	SavePath string `json:"savePath,omitempty" yaml:"savePath,omitempty"`
}

func DefaultDownloadRequest() DownloadRequest {
	return DownloadRequest{
		URL:      DefaultPayloadURL,
		Filename: DefaultPayloadFilename,
	}
}
