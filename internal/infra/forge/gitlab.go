package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
)

const gitlabDefaultBaseURL = "https://gitlab.com"

type GitLab struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewGitLab(token, baseURL string, client *http.Client) *GitLab {
	if baseURL == "" {
		baseURL = gitlabDefaultBaseURL
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	return &GitLab{token: token, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (g *GitLab) Name() string { return "gitlab" }

type gitlabProject struct {
	Path      string `json:"path"`
	SSHURL    string `json:"ssh_url_to_repo"`
	HTTPSURL  string `json:"http_url_to_repo"`
	Namespace struct {
		FullPath string `json:"full_path"`
	} `json:"namespace"`
}

func (p gitlabProject) toProject() domain.ForgeProject {
	return domain.ForgeProject{
		Name:      p.Path,
		Namespace: p.Namespace.FullPath,
		SSHURL:    p.SSHURL,
		HTTPSURL:  p.HTTPSURL,
	}
}

func (g *GitLab) ListProjects(ctx context.Context, filter domain.ForgeFilter) ([]domain.ForgeProject, error) {
	if filter.Empty() {
		return nil, ErrEmptyFilter
	}

	var urls []string
	if filter.Access {
		urls = append(urls, g.baseURL+"/api/v4/projects?membership=true")
	} else if filter.Owner {
		urls = append(urls, g.baseURL+"/api/v4/projects?owned=true")
	}
	for _, user := range filter.Users {
		urls = append(urls, fmt.Sprintf("%s/api/v4/users/%s/projects", g.baseURL, url.PathEscape(user)))
	}
	for _, group := range filter.Groups {
		urls = append(urls, fmt.Sprintf("%s/api/v4/groups/%s/projects?include_subgroups=true", g.baseURL, url.PathEscape(group)))
	}

	seen := map[string]struct{}{}
	var projects []domain.ForgeProject
	for _, listURL := range urls {
		batch, err := g.paginate(ctx, listURL)
		if err != nil {
			return nil, err
		}
		for _, raw := range batch {
			project := raw.toProject()
			if _, ok := seen[project.FullName()]; ok {
				continue
			}
			seen[project.FullName()] = struct{}{}
			projects = append(projects, project)
		}
	}
	return projects, nil
}

func (g *GitLab) paginate(ctx context.Context, listURL string) ([]gitlabProject, error) {
	separator := "?"
	if strings.Contains(listURL, "?") {
		separator = "&"
	}

	var all []gitlabProject
	for page := 1; ; page++ {
		var batch []gitlabProject
		pageURL := fmt.Sprintf("%s%sper_page=100&page=%d", listURL, separator, page)
		if err := getJSON(ctx, g.client, pageURL, g.headers(), &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < 100 {
			return all, nil
		}
	}
}

func (g *GitLab) headers() map[string]string {
	return map[string]string{"PRIVATE-TOKEN": g.token}
}
