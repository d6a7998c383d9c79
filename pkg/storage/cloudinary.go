package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

const defaultCloudinaryBase = "https://api.cloudinary.com"

// CloudinaryStore talks to a Cloudinary-compatible image API. Uploads use
// an unsigned preset; destroys require a per-request SHA-1 signature so
// the API secret never leaves the server.
type CloudinaryStore struct {
	cloudName    string
	uploadPreset string
	apiKey       string
	apiSecret    string
	baseURL      string
	client       *http.Client
	now          func() time.Time
}

// NewCloudinaryStore builds the store; a nil client gets a sane default.
func NewCloudinaryStore(cfg config.StorageConfig, client *http.Client) *CloudinaryStore {
	if client == nil {
		client = &http.Client{Timeout: cfg.UploadTimeout}
	}
	return &CloudinaryStore{
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		baseURL:      defaultCloudinaryBase,
		client:       client,
		now:          time.Now,
	}
}

// Ready verifies the delete credentials are present.
func (s *CloudinaryStore) Ready() error {
	if s.cloudName == "" || s.apiKey == "" || s.apiSecret == "" {
		return appErrors.ErrStorageUnavailable
	}
	return nil
}

// Upload posts the image bytes with the unsigned preset and returns the
// secure delivery URL.
func (s *CloudinaryStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if s.cloudName == "" || s.uploadPreset == "" {
		return "", appErrors.Clone(appErrors.ErrStorageUnavailable, "upload preset not configured")
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write upload payload: %w", err)
	}
	if err := mw.WriteField("upload_preset", s.uploadPreset); err != nil {
		return "", fmt.Errorf("write upload preset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &failure); err == nil && failure.Error.Message != "" {
			return "", fmt.Errorf("upload rejected: %s", failure.Error.Message)
		}
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}
	return result.SecureURL, nil
}

// DeleteByURL issues a signed destroy call for the object the URL names.
func (s *CloudinaryStore) DeleteByURL(ctx context.Context, rawURL string) error {
	if err := s.Ready(); err != nil {
		return err
	}

	publicID := PublicIDFromURL(rawURL)
	timestamp := s.now().Unix()
	signature := s.signDestroy(publicID, timestamp)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", strconv.FormatInt(timestamp, 10))
	form.Set("api_key", s.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy failed with status %d", resp.StatusCode)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	// "not found" counts as success: the object is already gone.
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy rejected: %s", result.Result)
	}
	return nil
}

// signDestroy computes the keyed digest the destroy endpoint expects:
// SHA-1 hex over "public_id=<id>&timestamp=<ts><secret>".
func (s *CloudinaryStore) signDestroy(publicID string, timestamp int64) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%d%s", publicID, timestamp, s.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
