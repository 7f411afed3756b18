// Package media uploads dish images to the third-party media host.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader stores an image and returns its hosted URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Cloudinary performs unsigned uploads against a fixed upload preset.
type Cloudinary struct {
	HTTP      *http.Client
	UploadURL string
	Preset    string
}

func NewCloudinary(uploadURL, preset string) *Cloudinary {
	return &Cloudinary{
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		UploadURL: uploadURL,
		Preset:    preset,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := form.WriteField("upload_preset", c.Preset); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer res.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("image upload failed: %s", out.Error.Message)
		}
		return "", fmt.Errorf("image upload failed: %s", res.Status)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("image upload failed: no url in response")
	}
	return out.SecureURL, nil
}
