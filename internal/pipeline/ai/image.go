package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// imageRequest is an image generation request
type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// imageResponse is an image generation response
type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateThemeImage asks the image model for an illustration URL matching
// an article subject. Requires an image model to be set; callers treat any
// error as "use the static theme table instead".
func (c *Client) GenerateThemeImage(subject string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	if c.imageModel == "" {
		return "", ErrNotConfigured
	}

	request := imageRequest{
		Model:  c.imageModel,
		Prompt: "A calm, minimal illustration for an article about: " + subject,
		N:      1,
		Size:   "512x512",
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}

	var imgResp imageResponse
	if err := json.Unmarshal(respBody, &imgResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if imgResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPICallFailed, imgResp.Error.Message)
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return "", ErrEmptyResponse
	}
	return imgResp.Data[0].URL, nil
}
