package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"marketplace-service/pkg/config"
)

// HTTPStore talks to the external image service over plain HTTP.
// Objects live under /objects/{category}/{owner_id}/{name}.
type HTTPStore struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPStore creates a store client from configuration
func NewHTTPStore(cfg *config.MediaConfig) *HTTPStore {
	return &HTTPStore{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload pushes each file in order and collects its public URL. The
// first failure aborts the batch; the caller compensates.
func (s *HTTPStore) Upload(ctx context.Context, files []File, category string, ownerID uint) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.uploadOne(ctx, f, category, ownerID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUploadFailed, f.Name, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *HTTPStore) uploadOne(ctx context.Context, f File, category string, ownerID uint) (string, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", ErrUnsupportedExt
	}

	// Object names are unique per upload so replacements never collide
	objectName := uuid.New().String() + ext

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", objectName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/objects/%s/%d", s.BaseURL, category, ownerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("store returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	return parsed.URL, nil
}

// DeleteAll removes every object under the owner's namespace
func (s *HTTPStore) DeleteAll(ctx context.Context, category string, ownerID uint) error {
	endpoint := fmt.Sprintf("%s/objects/%s/%d", s.BaseURL, category, ownerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

var _ Store = (*HTTPStore)(nil)
