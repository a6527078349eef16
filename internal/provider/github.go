package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/osintdeck/osintdeck/internal/model"
)

// defaultGitHubBaseURL is the public GitHub REST API.
const defaultGitHubBaseURL = "https://api.github.com"

// githubRepoLimit caps how many repositories a profile lookup fetches.
// Most recently pushed first; enough to characterize an account without
// paginating large organizations.
const githubRepoLimit = 10

// GitHub looks up an account profile and its recent repositories via the
// public REST API. Unauthenticated requests are rate-limited to 60/hour
// per source address, which is plenty for interactive lookups.
type GitHub struct {
	client      *http.Client
	baseURL     string
	maxBodySize int64
	logger      *slog.Logger
}

// NewGitHub creates the GitHub adapter.
func NewGitHub(client *http.Client, maxBodySize int64, logger *slog.Logger) *GitHub {
	return &GitHub{
		client:      client,
		baseURL:     defaultGitHubBaseURL,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (g *GitHub) Name() string { return "github" }

// Topic implements Provider.
func (g *GitHub) Topic() model.Topic { return model.TopicGitHub }

// githubUser is the subset of the users API response we consume.
type githubUser struct {
	Login       string `json:"login"`
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Blog        string `json:"blog"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	PublicRepos int    `json:"public_repos"`
	PublicGists int    `json:"public_gists"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// githubRepo is the subset of the repos API response we consume.
type githubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Fork        bool   `json:"fork"`
	HTMLURL     string `json:"html_url"`
	CreatedAt   string `json:"created_at"`
	PushedAt    string `json:"pushed_at"`
}

// Search implements Provider.
func (g *GitHub) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	username := req.Input
	g.logger.Debug("github lookup", "username", username)

	userURL := fmt.Sprintf("%s/users/%s", g.baseURL, url.PathEscape(username))

	var user githubUser
	if perr := getJSON(ctx, g.client, userURL, nil, g.maxBodySize, &user); perr != nil {
		if perr.Kind == model.ErrorKindNotFound {
			perr = NewError(model.ErrorKindNotFound, "GitHub user %q not found", username)
		}
		emit(model.Failure(g.Name(), perr.Kind, perr.Message))
		return perr
	}

	profile := model.GitHubProfile{
		Login:       user.Login,
		ID:          user.ID,
		Name:        user.Name,
		Company:     user.Company,
		Blog:        user.Blog,
		Location:    user.Location,
		Email:       user.Email,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		PublicRepos: user.PublicRepos,
		PublicGists: user.PublicGists,
		Followers:   user.Followers,
		Following:   user.Following,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	// Repo listing is best-effort enrichment: a failure here should not
	// void the profile we already have.
	reposURL := fmt.Sprintf("%s/users/%s/repos?sort=pushed&per_page=%d", g.baseURL, url.PathEscape(username), githubRepoLimit)

	var repos []githubRepo
	if perr := getJSON(ctx, g.client, reposURL, nil, g.maxBodySize, &repos); perr != nil {
		g.logger.Warn("github repo listing failed", "username", username, "error", perr.Message)
	} else {
		for _, r := range repos {
			profile.Repos = append(profile.Repos, model.GitHubRepo{
				Name:        r.Name,
				Description: r.Description,
				Language:    r.Language,
				Stars:       r.Stars,
				Forks:       r.Forks,
				Fork:        r.Fork,
				HTMLURL:     r.HTMLURL,
				CreatedAt:   r.CreatedAt,
				PushedAt:    r.PushedAt,
			})
		}
	}

	emit(model.Success(g.Name(), profile))
	return nil
}
