package forge

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
)

const githubDefaultBaseURL = "https://api.github.com"

type GitHub struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewGitHub(token, baseURL string, client *http.Client) *GitHub {
	if baseURL == "" {
		baseURL = githubDefaultBaseURL
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	return &GitHub{token: token, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (g *GitHub) Name() string { return "github" }

type githubRepo struct {
	Name   string `json:"name"`
	SSHURL string `json:"ssh_url"`
	HTTPS  string `json:"clone_url"`
	Owner  struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (r githubRepo) toProject() domain.ForgeProject {
	return domain.ForgeProject{
		Name:      r.Name,
		Namespace: r.Owner.Login,
		SSHURL:    r.SSHURL,
		HTTPSURL:  r.HTTPS,
	}
}

// ListProjects collects repositories for every selector in the filter.
// Owner restricts the authenticated user's repositories to owned ones;
// Access includes everything the token can reach.
func (g *GitHub) ListProjects(ctx context.Context, filter domain.ForgeFilter) ([]domain.ForgeProject, error) {
	if filter.Empty() {
		return nil, ErrEmptyFilter
	}

	var urls []string
	if filter.Access {
		urls = append(urls, g.baseURL+"/user/repos")
	} else if filter.Owner {
		urls = append(urls, g.baseURL+"/user/repos?affiliation=owner")
	}
	for _, user := range filter.Users {
		urls = append(urls, fmt.Sprintf("%s/users/%s/repos", g.baseURL, user))
	}
	for _, group := range filter.Groups {
		urls = append(urls, fmt.Sprintf("%s/orgs/%s/repos", g.baseURL, group))
	}

	seen := map[string]struct{}{}
	var projects []domain.ForgeProject
	for _, url := range urls {
		repos, err := g.paginate(ctx, url)
		if err != nil {
			return nil, err
		}
		for _, repo := range repos {
			project := repo.toProject()
			if _, ok := seen[project.FullName()]; ok {
				continue
			}
			seen[project.FullName()] = struct{}{}
			projects = append(projects, project)
		}
	}
	return projects, nil
}

func (g *GitHub) paginate(ctx context.Context, url string) ([]githubRepo, error) {
	separator := "?"
	if strings.Contains(url, "?") {
		separator = "&"
	}

	var all []githubRepo
	for page := 1; ; page++ {
		var batch []githubRepo
		pageURL := fmt.Sprintf("%s%sper_page=100&page=%d", url, separator, page)
		if err := getJSON(ctx, g.client, pageURL, g.headers(), &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < 100 {
			return all, nil
		}
	}
}

func (g *GitHub) headers() map[string]string {
	return map[string]string{
		"Accept":        "application/vnd.github+json",
		"Authorization": "Bearer " + g.token,
	}
}
