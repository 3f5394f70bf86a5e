package internal

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ImageClient interface {
	Get(path string) (io.ReadCloser, error)
}

type ImageFetcher struct {
	baseUrl string
	client  HTTPClient
}

// NewImageClient returns a client that resolves paths against baseUrl. An
// empty baseUrl means every path is an absolute URL.
func NewImageClient(baseUrl string) ImageClient {
	return &ImageFetcher{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *ImageFetcher) Get(path string) (io.ReadCloser, error) {
	url := path
	if f.baseUrl != "" {
		url = fmt.Sprintf("%s/%s", f.baseUrl, strings.TrimPrefix(path, "/"))
	}

	log.Printf("Retrieving: %s", url)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}

	if res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, fmt.Errorf("http status response from %s: %s", url, res.Status)
	}

	return res.Body, nil
}

func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
