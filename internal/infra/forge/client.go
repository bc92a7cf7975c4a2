package forge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
)

const userAgent = "repofleet"

// getJSON performs one authenticated GET and decodes the body into out.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from %s: %s", url, resp.Status)
	}
	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
