package tariff

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bryan-cox/wageledger/internal/model"
)

// maxRemoteBytes caps how much of a remote tariff response is read.
const maxRemoteBytes = 1 << 20

// Fetch downloads a YAML tariff from url. A non-empty token is sent as a
// bearer token.
func Fetch(ctx context.Context, url, token string) (model.Tariff, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Tariff{}, fmt.Errorf("failed to create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("Accept", "application/yaml")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return model.Tariff{}, fmt.Errorf("failed to fetch tariff: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Tariff{}, fmt.Errorf("tariff server returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return model.Tariff{}, fmt.Errorf("failed to read tariff: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return model.Tariff{}, fmt.Errorf("'%s': %w", url, err)
	}
	return t, nil
}
