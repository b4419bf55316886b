// Package httpcontent provides track content served over plain HTTP.
package httpcontent

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// NewClient returns an HTTP client with the given request timeout.
// A non-positive timeout means no timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return &http.Client{}
	}
	return &http.Client{Timeout: timeout}
}

// Content downloads a track's MP3 from a URL.
type Content struct {
	URL    string
	Client *http.Client
}

// New creates content for url.
func New(url string, client *http.Client) *Content {
	return &Content{URL: url, Client: client}
}

// Download fetches the URL into dst, creating or truncating it.
func (c *Content) Download(ctx context.Context, dst string) error {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %s", c.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("fetch %s: unexpected status %s", c.URL, resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}

	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", dst)
	}

	zlog.Debug().Msgf("httpcontent: downloaded %d bytes from %s", n, c.URL)
	return nil
}
