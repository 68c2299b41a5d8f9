package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"gittrack/internal/errors"
	"gittrack/internal/logger"
)

const defaultBaseURL = "https://api.github.com"

// Client talks to the GitHub REST API for the small surface the tool
// needs: creating a remote repository and identifying the token owner.
type Client struct {
	client *req.Client
	logger logger.Logger
}

// NewClient creates a Client authenticated with the given token.
func NewClient(token string, log logger.Logger) *Client {
	return NewClientWithBaseURL(token, defaultBaseURL, log)
}

// NewClientWithBaseURL is the test seam for pointing the client at a
// local server.
func NewClientWithBaseURL(token, baseURL string, log logger.Logger) *Client {
	client := req.C().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetCommonHeader("Accept", "application/vnd.github+json").
		SetCommonHeader("X-GitHub-Api-Version", "2022-11-28").
		SetCommonBearerAuthToken(token)

	return &Client{
		client: client,
		logger: log,
	}
}

type apiError struct {
	Message string `json:"message"`
}

type userResponse struct {
	Login string `json:"login"`
}

type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

type createRepoResponse struct {
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	HTMLURL  string `json:"html_url"`
}

// Repository describes a remote repository created through the API.
type Repository struct {
	FullName string
	CloneURL string
	HTMLURL  string
}

// AuthenticatedUser returns the login of the token owner.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	var user userResponse
	var apiErr apiError

	resp, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&user).
		SetErrorResult(&apiErr).
		Get("/user")
	if err != nil {
		return "", errors.Wrap(err, "fetching authenticated user")
	}
	if resp.IsErrorState() {
		return "", apiFailure("fetching authenticated user", resp, &apiErr)
	}
	return user.Login, nil
}

// CreateRepository creates a repository under the authenticated user and
// returns its clone URL.
func (c *Client) CreateRepository(ctx context.Context, name, description string, private bool) (*Repository, error) {
	var created createRepoResponse
	var apiErr apiError

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&createRepoRequest{
			Name:        name,
			Description: description,
			Private:     private,
		}).
		SetSuccessResult(&created).
		SetErrorResult(&apiErr).
		Post("/user/repos")
	if err != nil {
		return nil, errors.Wrap(err, "creating repository")
	}
	if resp.IsErrorState() {
		return nil, apiFailure("creating repository", resp, &apiErr)
	}

	c.logger.Info("created remote repository %s", created.FullName)
	return &Repository{
		FullName: created.FullName,
		CloneURL: created.CloneURL,
		HTMLURL:  created.HTMLURL,
	}, nil
}

func apiFailure(op string, resp *req.Response, apiErr *apiError) error {
	if apiErr.Message != "" {
		return errors.Errorf("%s: %s (HTTP %d)", op, apiErr.Message, resp.StatusCode)
	}
	return errors.Errorf("%s: %s", op, fmt.Sprintf("HTTP %d", resp.StatusCode))
}
