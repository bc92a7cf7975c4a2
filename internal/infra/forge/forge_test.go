package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/repofleet/repofleet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider("github", "", "")
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = NewProvider("bitkeeper", "tok", "")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	provider, err := NewProvider("gitlab", "tok", "")
	require.NoError(t, err)
	assert.Equal(t, "gitlab", provider.Name())
}

func TestGitHubListProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/users/alice/repos", r.URL.Path)
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprint(w, `[
			{"name": "fleet", "ssh_url": "git@github.com:alice/fleet.git", "clone_url": "https://github.com/alice/fleet.git", "owner": {"login": "alice"}},
			{"name": "tools", "ssh_url": "git@github.com:alice/tools.git", "clone_url": "https://github.com/alice/tools.git", "owner": {"login": "alice"}}
		]`)
	}))
	defer server.Close()

	provider := NewGitHub("tok", server.URL, server.Client())
	projects, err := provider.ListProjects(context.Background(), domain.ForgeFilter{Users: []string{"alice"}})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "alice/fleet", projects[0].FullName())
	assert.Equal(t, "git@github.com:alice/fleet.git", projects[0].URL(domain.RemoteKindSSH))
	assert.Equal(t, "https://github.com/alice/fleet.git", projects[0].URL(domain.RemoteKindHTTPS))
}

func TestGitHubRejectsEmptyFilter(t *testing.T) {
	provider := NewGitHub("tok", "", nil)
	_, err := provider.ListProjects(context.Background(), domain.ForgeFilter{})
	assert.ErrorIs(t, err, ErrEmptyFilter)
}

func TestGitHubDeduplicatesAcrossSelectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprint(w, `[{"name": "fleet", "ssh_url": "s", "clone_url": "h", "owner": {"login": "alice"}}]`)
	}))
	defer server.Close()

	provider := NewGitHub("tok", server.URL, server.Client())
	projects, err := provider.ListProjects(context.Background(), domain.ForgeFilter{Users: []string{"alice"}, Groups: []string{"acme"}})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestGitLabListProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("PRIVATE-TOKEN"))
		assert.Equal(t, "/api/v4/groups/acme/projects", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_subgroups"))
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprint(w, `[{"path": "fleet", "ssh_url_to_repo": "git@gitlab.com:acme/infra/fleet.git", "http_url_to_repo": "https://gitlab.com/acme/infra/fleet.git", "namespace": {"full_path": "acme/infra"}}]`)
	}))
	defer server.Close()

	provider := NewGitLab("tok", server.URL, server.Client())
	projects, err := provider.ListProjects(context.Background(), domain.ForgeFilter{Groups: []string{"acme"}})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "acme/infra/fleet", projects[0].FullName())
}

func TestGitHubErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := NewGitHub("tok", server.URL, server.Client())
	_, err := provider.ListProjects(context.Background(), domain.ForgeFilter{Owner: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTokenFromCommand(t *testing.T) {
	token, err := TokenFromCommand(context.Background(), "echo ' secret-token '")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	token, err = TokenFromCommand(context.Background(), "printf 'first-line\\nsecond-line\\n'")
	require.NoError(t, err)
	assert.Equal(t, "first-line", token)
}

func TestTokenFromCommandFailures(t *testing.T) {
	_, err := TokenFromCommand(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = TokenFromCommand(context.Background(), "true")
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = TokenFromCommand(context.Background(), "exit 3")
	require.Error(t, err)
}
