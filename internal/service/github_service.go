package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const defaultGitHubAPIBase = "https://api.github.com"

// GitHubConfig configures the GitHub OAuth application.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// APIBaseURL and Endpoint default to github.com; they are overridable for tests and GitHub Enterprise.
	APIBaseURL string
	Endpoint   *oauth2.Endpoint
}

// GitHubUser is the public account information returned by the GitHub API.
type GitHubUser struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	AvatarURL   string `json:"avatar_url"`
	PublicRepos int    `json:"public_repos"`
}

// GitHubService drives the OAuth handshake used to link a GitHub account.
type GitHubService interface {
	AuthURL(username string) (authURL, state string, err error)
	Exchange(ctx context.Context, code string) (*GitHubUser, error)
}

type githubService struct {
	oauth   *oauth2.Config
	apiBase string
}

func NewGitHubService(cfg GitHubConfig) GitHubService {
	endpoint := github.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	apiBase := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = defaultGitHubAPIBase
	}
	return &githubService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user"},
			Endpoint:     endpoint,
		},
		apiBase: apiBase,
	}
}

func (s *githubService) AuthURL(username string) (string, string, error) {
	if s.oauth.ClientID == "" {
		return "", "", ErrGitHubNotConfigured
	}
	state := uuid.NewString()
	opts := []oauth2.AuthCodeOption{}
	if username = strings.TrimSpace(username); username != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login", username))
	}
	return s.oauth.AuthCodeURL(state, opts...), state, nil
}

func (s *githubService) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	if s.oauth.ClientID == "" {
		return nil, ErrGitHubNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return nil, newValidationError("Code not found")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange github code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build github user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch github user: unexpected status %d", resp.StatusCode)
	}

	var user GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode github user: %w", err)
	}
	return &user, nil
}
