package account

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/taskclient/pkg/apiclient"
)

// User as returned by the signup endpoint.
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
}

// SignupRequest is the signup form.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Service handles login and signup. The session itself lives in the
// gateway's cookie jar; nothing is stored here.
type Service struct {
	client *apiclient.Client
}

// NewService creates an account service over the gateway client.
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// Login posts the credentials as a form. On success the backend sets the
// session cookie and every later call through the same client is authenticated.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	_, err := apiclient.Send[struct{}](ctx, s.client, "/login/access-token",
		apiclient.WithMethod(http.MethodPost),
		apiclient.WithForm(url.Values{
			"username": {email},
			"password": {password},
		}),
	)
	return err
}

// LoggedIn reports whether the client holds a session cookie for the API.
func (s *Service) LoggedIn() bool {
	return len(s.client.Cookies()) > 0
}

// Signup creates an account. It does not log in.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return User{}, ErrMissingCredentials
	}
	return apiclient.Post[User](ctx, s.client, "/users/open", req)
}
