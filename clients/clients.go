package clients

// ClientApp is a registered client application. Credentials are generated
// once at registration and never rotated.
type ClientApp struct {
	ID           string   `json:"client_id"`
	Secret       string   `json:"client_secret"`
	DisplayName  string   `json:"display_name"`
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes"`
}

// DefaultRedirectURI returns the first registered redirect URI.
func (c *ClientApp) DefaultRedirectURI() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}

// HasRedirectURI checks if the URI is registered for this client
func (c *ClientApp) HasRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// HasScope checks if the client has permission for a specific scope
func (c *ClientApp) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
