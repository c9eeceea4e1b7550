package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

var (
	// ErrServerUnreachable indicates the upload endpoint could not be reached
	// at all. Callers can suggest manual URL entry as a fallback.
	ErrServerUnreachable = errors.New("upload server not available")
	// ErrUploadRejected indicates the server answered but refused the file.
	ErrUploadRejected = errors.New("upload rejected by server")
)

// Client submits files to a running upload service over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient constructs a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Upload posts the content as multipart field "file" and returns the stored
// filename. Transport failures map to ErrServerUnreachable, server-side
// refusals to ErrUploadRejected with the server's message.
func (c *Client) Upload(ctx context.Context, fileName, mimeType string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy file into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/uploads", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v, please add video URLs manually instead", ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	var result struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: unexpected response: %v", ErrServerUnreachable, err)
	}

	if !result.Success {
		message := result.Message
		if message == "" {
			message = "upload failed"
		}
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, message)
	}

	return result.FileName, nil
}
