package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/grants"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/token"
)

// AuthorizationRedirect handles the redirection after a successful consent
// decision. code is the freshly minted authorization code and state is the
// client's original state value, echoed back unmodified.
type AuthorizationRedirect func(redirectURI, code, state string)

// ErrorRedirect surfaces an authorization failure to the client's own
// redirect target rather than as a direct response. status is an error
// indicator appended as a query parameter.
type ErrorRedirect func(redirectURI, status string)

// ConsentPrompt shows the requesting client's identity to the resource
// owner so they can approve or deny.
type ConsentPrompt func(client *clients.ClientApp)

const codeGenerationLength = 32

// Repos holds all repository dependencies for the AuthorizationService
type Repos struct {
	Clients   clients.Repo
	Resources resources.Repo
	Grants    grants.Repo
}

// AuthorizationService orchestrates the login, consent, code-issuance and
// code-exchange steps of the authorization flow.
type AuthorizationService struct {
	repos        Repos
	tokenCreator *token.Manager
	codeLifetime time.Duration
	nowTime      func() time.Time // injectable for testing
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithCodeLifetime overrides the authorization code lifetime.
func WithCodeLifetime(lifetime time.Duration) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.codeLifetime = lifetime
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(
	repos Repos,
	tokenCreator *token.Manager,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if repos.Clients == nil {
		return nil, errors.New("[NewAuthorizationService] Clients repo is required")
	}
	if repos.Resources == nil {
		return nil, errors.New("[NewAuthorizationService] Resources repo is required")
	}
	if repos.Grants == nil {
		return nil, errors.New("[NewAuthorizationService] Grants repo is required")
	}
	if tokenCreator == nil {
		return nil, errors.New("[NewAuthorizationService] tokenCreator is required")
	}

	authService := &AuthorizationService{
		repos:        repos,
		tokenCreator: tokenCreator,
		codeLifetime: grants.DefaultLifetime,
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(authService)
	}

	return authService, nil
}

// Authorize enters the authorization flow. username is the resource
// identity of the authenticated session, or "" when no session exists yet,
// in which case the caller is sent to the login step with the original
// parameters preserved. An unresolvable client redirects to the caller's
// own redirect target with an error status instead of issuing a code.
func (as *AuthorizationService) Authorize(params *Parameters, username string, loginRedirect func(), consentPrompt ConsentPrompt, errorRedirect ErrorRedirect) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if username == "" {
		loginRedirect()
		return nil
	}

	client, err := as.repos.Clients.Get(params.ClientID)
	if err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			errorRedirect(params.RedirectURI, "unknown_client")
			return nil
		}
		return errors.Wrap(err, "[Authorize] clients.Get")
	}

	consentPrompt(client)
	return nil
}

// Login validates resource-owner credentials. The two failure cases are
// distinguishable statuses; neither establishes a session.
func (as *AuthorizationService) Login(username, password string) error {
	res, err := as.repos.Resources.Get(username)
	if err != nil {
		if errors.Is(err, resources.ErrResourceNotFound) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, "[Login] resources.Get")
	}
	if !resources.CheckPasswordHash(password, res.PasswordHash) {
		return ErrInvalidPassword
	}
	return nil
}

// Approve records the resource owner's consent: a fresh unguessable code is
// minted, persisted as a grant bound to the authenticated username, and the
// caller is redirected with the code and the original state.
func (as *AuthorizationService) Approve(params *Parameters, username string, redirect AuthorizationRedirect) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if username == "" {
		return ErrUserNotFound
	}

	bytes := make([]byte, codeGenerationLength)
	if _, err := rand.Read(bytes); err != nil {
		return errors.Wrap(err, "[Approve] rand.Read")
	}
	code := base64.RawURLEncoding.EncodeToString(bytes)

	now := as.nowTime()
	grant := &grants.Grant{
		Code:             code,
		ClientID:         params.ClientID,
		ResourceUsername: username,
		RedirectURI:      params.RedirectURI,
		Scope:            params.Scope,
		IssuedAt:         now,
		ExpiresAt:        now.Add(as.codeLifetime),
	}
	if err := as.repos.Grants.Upsert(grant); err != nil {
		return errors.Wrap(err, "[Approve] grants.Upsert")
	}

	redirect(params.RedirectURI, code, params.State)
	return nil
}

// Exchange trades an authorization code for a token pair. The grant is
// single-use: a second presentation of the same code fails with
// grants.ErrInvalidGrant, as does an expired code. Issuing the pair
// invalidates every pair previously held by the client.
func (as *AuthorizationService) Exchange(clientID, code string) (*TokenResponse, error) {
	if _, err := as.repos.Clients.Get(clientID); err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			return nil, ErrUnknownClient
		}
		return nil, errors.Wrap(err, "[Exchange] clients.Get")
	}

	grant, err := as.repos.Grants.Consume(clientID, code)
	if err != nil {
		if errors.Is(err, grants.ErrInvalidGrant) {
			return nil, grants.ErrInvalidGrant
		}
		return nil, errors.Wrap(err, "[Exchange] grants.Consume")
	}
	if grant.Expired(as.nowTime()) {
		return nil, grants.ErrInvalidGrant
	}

	pair, err := as.tokenCreator.Issue(clientID, grant.ResourceUsername)
	if err != nil {
		return nil, errors.Wrap(err, "[Exchange] tokenCreator.Issue")
	}

	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}, nil
}
