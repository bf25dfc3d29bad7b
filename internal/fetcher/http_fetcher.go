package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

const _maxBodySize = 64 * 1024 * 1024 // 64 MB, large enough for a lossless track

// HTTPSource reads library documents from the HTTP server hosting /songs
type HTTPSource struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

// NewHTTPSource creates a metadata source rooted at the configured base URL
func NewHTTPSource(logger *zap.Logger, cfg domain.Config) *HTTPSource {
	return newHTTPSource(logger, cfg.GetBaseURL())
}

func newHTTPSource(logger *zap.Logger, baseURL string) *HTTPSource {
	return &HTTPSource{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve returns the absolute URL of a library path
func (s *HTTPSource) Resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// Get downloads the document stored at path
func (s *HTTPSource) Get(ctx context.Context, path string) ([]byte, error) {
	url := s.Resolve(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "albumplayer/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	s.logger.Debug("Document fetched", zap.Int("bytes", len(data)), zap.String("url", url))
	return data, nil
}
