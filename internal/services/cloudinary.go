package services

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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
)

// CloudinaryService uploads member photos to Cloudinary and returns the
// hosted URL. Uploads are signed with the account's API secret.
type CloudinaryService struct {
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	client    *http.Client
	log       zerolog.Logger
}

func NewCloudinaryService(cfg config.CloudinaryConfig, log zerolog.Logger) *CloudinaryService {
	return &CloudinaryService{
		baseURL:   "https://api.cloudinary.com",
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    cfg.Folder,
		client:    &http.Client{Timeout: cfg.UploadTimeout},
		log:       log,
	}
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image to Cloudinary's upload endpoint and returns the
// hosted URL. A transport error, an error status, or a response without a
// URL all report ErrUploadFailure.
func (s *CloudinaryService) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    s.folder,
		"timestamp": timestamp,
	}
	signature := signUploadParams(params, s.apiSecret)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
		}
	}
	if err := writer.WriteField("api_key", s.apiKey); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}
	if err := writer.WriteField("signature", signature); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailure, err)
	}
	defer resp.Body.Close()

	var result cloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", models.ErrUploadFailure, err)
	}
	if resp.StatusCode >= 400 {
		s.log.Error().Int("status", resp.StatusCode).Str("message", result.Error.Message).Msg("cloudinary upload rejected")
		return "", fmt.Errorf("%w: status %d: %s", models.ErrUploadFailure, resp.StatusCode, result.Error.Message)
	}

	hostedURL := result.SecureURL
	if hostedURL == "" {
		hostedURL = result.URL
	}
	if hostedURL == "" {
		return "", fmt.Errorf("%w: no URL in response", models.ErrUploadFailure)
	}
	return hostedURL, nil
}

// signUploadParams produces Cloudinary's upload signature: the SHA-1 hex
// digest of the sorted key=value parameter string concatenated with the
// API secret.
func signUploadParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
