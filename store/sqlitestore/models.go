package sqlitestore

import (
	"strings"
	"time"

	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/grants"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/token"
)

// List columns hold space/comma joined values, mirroring the flat columns
// the original schema used.
const listSeparator = ","

type clientRow struct {
	ClientID     string `gorm:"primaryKey;column:client_id"`
	Secret       string `gorm:"column:client_secret;not null"`
	DisplayName  string `gorm:"uniqueIndex;not null"`
	RedirectURIs string
	Scopes       string
}

func (clientRow) TableName() string { return "clients" }

type resourceRow struct {
	Username        string `gorm:"primaryKey"`
	PasswordHash    string `gorm:"not null"`
	DeviceIDs       string
	DeviceAddresses string
}

func (resourceRow) TableName() string { return "resources" }

type grantRow struct {
	Code             string `gorm:"primaryKey"`
	ClientID         string `gorm:"index;not null"`
	ResourceUsername string `gorm:"not null"`
	RedirectURI      string
	Scope            string
	IssuedAt         time.Time
	ExpiresAt        time.Time
}

func (grantRow) TableName() string { return "grants" }

type tokenRow struct {
	AccessToken      string `gorm:"primaryKey;column:access_token"`
	RefreshToken     string `gorm:"uniqueIndex;column:refresh_token"`
	TokenType        string
	ClientID         string `gorm:"index;not null"`
	ResourceUsername string `gorm:"not null"`
	IssuedAt         time.Time
	ExpiresAt        time.Time
}

func (tokenRow) TableName() string { return "tokens" }

func joinList(values []string) string {
	return strings.Join(values, listSeparator)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, listSeparator)
}

func clientToRow(c *clients.ClientApp) *clientRow {
	return &clientRow{
		ClientID:     c.ID,
		Secret:       c.Secret,
		DisplayName:  c.DisplayName,
		RedirectURIs: joinList(c.RedirectURIs),
		Scopes:       joinList(c.Scopes),
	}
}

func rowToClient(r *clientRow) *clients.ClientApp {
	return &clients.ClientApp{
		ID:           r.ClientID,
		Secret:       r.Secret,
		DisplayName:  r.DisplayName,
		RedirectURIs: splitList(r.RedirectURIs),
		Scopes:       splitList(r.Scopes),
	}
}

func resourceToRow(res *resources.Resource) *resourceRow {
	return &resourceRow{
		Username:        res.Username,
		PasswordHash:    res.PasswordHash,
		DeviceIDs:       joinList(res.DeviceIDs),
		DeviceAddresses: joinList(res.DeviceAddresses),
	}
}

func rowToResource(r *resourceRow) *resources.Resource {
	return &resources.Resource{
		Username:        r.Username,
		PasswordHash:    r.PasswordHash,
		DeviceIDs:       splitList(r.DeviceIDs),
		DeviceAddresses: splitList(r.DeviceAddresses),
	}
}

func grantToRow(g *grants.Grant) *grantRow {
	return &grantRow{
		Code:             g.Code,
		ClientID:         g.ClientID,
		ResourceUsername: g.ResourceUsername,
		RedirectURI:      g.RedirectURI,
		Scope:            g.Scope,
		IssuedAt:         g.IssuedAt,
		ExpiresAt:        g.ExpiresAt,
	}
}

func rowToGrant(r *grantRow) *grants.Grant {
	return &grants.Grant{
		Code:             r.Code,
		ClientID:         r.ClientID,
		ResourceUsername: r.ResourceUsername,
		RedirectURI:      r.RedirectURI,
		Scope:            r.Scope,
		IssuedAt:         r.IssuedAt,
		ExpiresAt:        r.ExpiresAt,
	}
}

func pairToRow(p *token.Pair) *tokenRow {
	return &tokenRow{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        p.TokenType,
		ClientID:         p.ClientID,
		ResourceUsername: p.ResourceUsername,
		IssuedAt:         p.IssuedAt,
		ExpiresAt:        p.ExpiresAt,
	}
}

func rowToPair(r *tokenRow) *token.Pair {
	return &token.Pair{
		AccessToken:      r.AccessToken,
		RefreshToken:     r.RefreshToken,
		TokenType:        r.TokenType,
		ClientID:         r.ClientID,
		ResourceUsername: r.ResourceUsername,
		IssuedAt:         r.IssuedAt,
		ExpiresAt:        r.ExpiresAt,
	}
}
