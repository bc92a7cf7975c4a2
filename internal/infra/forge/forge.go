package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/repofleet/repofleet/internal/domain"
)

var ErrUnknownProvider = errors.New("unknown provider")
var ErrTokenRequired = errors.New("api token is required")
var ErrEmptyFilter = errors.New("at least one of users, groups, owner or access must be set")

// Provider lists projects on one hosting service.
type Provider interface {
	Name() string
	ListProjects(ctx context.Context, filter domain.ForgeFilter) ([]domain.ForgeProject, error)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// NewProvider builds a provider by name. The base URL overrides the public
// endpoint for self-hosted instances; empty keeps the default.
func NewProvider(name, token, baseURL string) (Provider, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	switch name {
	case "github":
		return NewGitHub(token, baseURL, defaultHTTPClient()), nil
	case "gitlab":
		return NewGitLab(token, baseURL, defaultHTTPClient()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}
