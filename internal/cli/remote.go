package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/httputil"
	"github.com/victorsole/brubru/pkg/integrations"
)

const defaultServerURL = "http://localhost:8080"

// remote talks to the admin endpoints of a running server.
type remote struct {
	client *integrations.Client
	http   *http.Client
}

func newRemote(serverURL string, logger *log.Logger) *remote {
	cfg := integrations.DefaultConfig("brubru server", strings.TrimRight(serverURL, "/")+"/")
	cfg.RateLimitDelay = 0
	cfg.CacheTTL = 0
	cfg.MaxRetryAttempts = 1
	return &remote{
		client: integrations.NewClient(cfg, integrations.WithLogger(logger)),
		http:   integrations.NewHTTPClient(cfg.RequestTimeout),
	}
}

func (r *remote) stats(ctx context.Context, out any) error {
	body, err := r.client.Get(ctx, r.client.ResolveURL("stats"), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return brerrors.Wrap(brerrors.ErrCodeFetch, err, "decoding server stats")
	}
	return nil
}

func (r *remote) clearCache(ctx context.Context) (int, error) {
	target := r.client.ResolveURL("cache")
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return 0, httputil.Classify(target, err)
	}
	defer resp.Body.Close()
	if err := httputil.CheckStatus(target, resp.StatusCode); err != nil {
		return 0, err
	}

	var body struct {
		Cleared int `json:"cleared"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, brerrors.Wrap(brerrors.ErrCodeFetch, err, "decoding server response")
	}
	return body.Cleared, nil
}
