package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"archive-sync/feature/character/models"

	"github.com/cenkalti/backoff/v4"
)

// Source is implemented by each external character data source.
// Each source is responsible for fetching its own document format and mapping
// it into the canonical record shape. Fetching is all-or-nothing per source:
// a partial body is an error, never a partial record set.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.Character, error)
}

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// fetchJSON downloads the document at url with bounded retries and
// exponential backoff. Transient failures (network errors, 5xx) are retried;
// anything else fails immediately.
func fetchJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "archive-sync/1.0")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("upstream returned %d", resp.StatusCode))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			// Truncated body; retry rather than hand back a partial document.
			return err
		}

		body = data
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	return body, nil
}
