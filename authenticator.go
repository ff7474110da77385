package identity

import (
	"context"
	"time"
)

// TokenPair is the result of a successful login: a short-lived access token
// and a longer-lived refresh token, both signed over the same subject.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Auther glues the directory and the token services together into the login
// and refresh flows. It holds no record state of its own.
type Auther struct {
	directory      Directory
	accessService  TokenService
	refreshService TokenService
	accessTTL      time.Duration
	logger         Logger
}

// NewAuthenticator returns an Auther wired from configuration. The access
// and refresh services share a signing key and issuer and differ only in
// token lifetime.
func NewAuthenticator(directory Directory, opts Config) *Auther {
	signingKey := []byte(opts.GetSigningKey())

	return &Auther{
		directory: directory,
		accessService: NewTokenService(
			signingKey,
			opts.GetAccessTokenTTL(),
			opts.GetIssuer(),
			opts.GetAudience(),
		),
		refreshService: NewTokenService(
			signingKey,
			opts.GetRefreshTokenTTL(),
			opts.GetIssuer(),
			opts.GetAudience(),
		),
		accessTTL: opts.GetAccessTokenTTL(),
		logger:    defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the access token service, for callers that verify
// tokens outside the login flow.
func (s *Auther) TokenService() TokenService {
	return s.accessService
}

// Login verifies the credentials and issues a token pair from the user's
// current record and the current claims registry.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.directory.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("login verify identity error: %v", err)
		return nil, err
	}

	registry := s.directory.Registry()

	accessToken, err := s.accessService.Issue(user, registry)
	if err != nil {
		s.logger.Error("login could not issue access token: %v", err)
		return nil, err
	}

	refreshToken, err := s.refreshService.Issue(user, registry)
	if err != nil {
		s.logger.Error("login could not issue refresh token: %v", err)
		return nil, err
	}

	s.logger.Info("issued token pair for user %s", user.ID)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh verifies the refresh token, reloads the subject's current record,
// and issues a fresh access token. The new token reflects the record and the
// registry as they are now, not as they were when the refresh token was
// signed.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	claims, err := s.refreshService.Verify(refreshToken)
	if err != nil {
		s.logger.Error("refresh token rejected: %v", err)
		return "", err
	}

	user, err := s.directory.User(claims.Subject)
	if err != nil {
		s.logger.Error("refresh subject %s not found: %v", claims.Subject, err)
		return "", err
	}

	return s.accessService.Refresh(refreshToken, user, s.directory.Registry())
}
