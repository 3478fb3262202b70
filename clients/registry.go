package clients

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
)

const (
	clientIDLength     = 30
	clientSecretLength = 40
)

var ErrDisplayNameRequired = errors.New("display name is required")

// Registry issues and looks up client application credentials.
type Registry struct {
	repo               Repo
	defaultRedirectURI string
	defaultScope       string
}

// NewRegistry creates a Registry. defaultRedirectURI and defaultScope are
// assigned to every newly registered client.
func NewRegistry(repo Repo, defaultRedirectURI, defaultScope string) (*Registry, error) {
	if repo == nil {
		return nil, errors.New("[NewRegistry] client repo is required")
	}
	return &Registry{
		repo:               repo,
		defaultRedirectURI: defaultRedirectURI,
		defaultScope:       defaultScope,
	}, nil
}

// Register creates a client application with fresh credentials. Registering
// the same display name twice returns the existing client rather than
// creating a duplicate.
func (r *Registry) Register(displayName string) (*ClientApp, error) {
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}

	if existing, err := r.repo.GetByDisplayName(displayName); err == nil && existing != nil {
		return existing, nil
	} else if err != nil && !errors.Is(err, ErrClientNotFound) {
		return nil, errors.Wrap(err, "[Registry.Register] repo.GetByDisplayName")
	}

	id, err := generateCredential(clientIDLength)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry.Register] generate client id")
	}
	secret, err := generateCredential(clientSecretLength)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry.Register] generate client secret")
	}

	client := &ClientApp{
		ID:           id,
		Secret:       secret,
		DisplayName:  displayName,
		RedirectURIs: []string{r.defaultRedirectURI},
		Scopes:       []string{r.defaultScope},
	}
	if err := r.repo.Upsert(client); err != nil {
		return nil, errors.Wrap(err, "[Registry.Register] repo.Upsert")
	}
	return client, nil
}

// Find looks up a client by its ID.
func (r *Registry) Find(clientID string) (*ClientApp, error) {
	return r.repo.Get(clientID)
}

func generateCredential(byteLength int) (string, error) {
	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
