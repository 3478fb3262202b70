// Package sqlitestore provides sqlite-backed implementations of the client,
// resource, grant and token repositories. The single-use and rotation
// contracts are enforced inside database transactions.
package sqlitestore

import (
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/grants"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/token"
)

// Store wraps a gorm connection and hands out repository views of it.
type Store struct {
	db *gorm.DB
}

// New opens the database and migrates the schema.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.New] open")
	}

	if err := db.AutoMigrate(
		&clientRow{},
		&resourceRow{},
		&grantRow{},
		&tokenRow{},
	); err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.New] migrate")
	}

	return &Store{db: db}, nil
}

// SeedResources provisions resource identities that are not already
// present. Existing identities are left untouched so re-running the server
// never resets passwords or device manifests.
func (s *Store) SeedResources(seed []resources.Resource) error {
	repo := s.Resources()
	for i := range seed {
		if _, err := repo.Get(seed[i].Username); err == nil {
			continue
		} else if !errors.Is(err, resources.ErrResourceNotFound) {
			return errors.Wrap(err, "[Store.SeedResources] get")
		}
		if err := repo.Upsert(&seed[i]); err != nil {
			return errors.Wrap(err, "[Store.SeedResources] upsert")
		}
	}
	return nil
}

// Clients returns the client application repository.
func (s *Store) Clients() clients.Repo { return &clientRepo{db: s.db} }

// Resources returns the resource identity repository.
func (s *Store) Resources() resources.Repo { return &resourceRepo{db: s.db} }

// Grants returns the authorization grant repository.
func (s *Store) Grants() grants.Repo { return &grantRepo{db: s.db} }

// Tokens returns the token pair repository.
func (s *Store) Tokens() token.Repo { return &tokenRepo{db: s.db} }

type clientRepo struct{ db *gorm.DB }

var _ clients.Repo = (*clientRepo)(nil)

func (r *clientRepo) Upsert(client *clients.ClientApp) error {
	if err := r.db.Save(clientToRow(client)).Error; err != nil {
		return errors.Wrap(err, "[clientRepo.Upsert] save")
	}
	return nil
}

func (r *clientRepo) Get(clientID string) (*clients.ClientApp, error) {
	var row clientRow
	if err := r.db.First(&row, "client_id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clients.ErrClientNotFound
		}
		return nil, errors.Wrap(err, "[clientRepo.Get] first")
	}
	return rowToClient(&row), nil
}

func (r *clientRepo) GetByDisplayName(displayName string) (*clients.ClientApp, error) {
	var row clientRow
	if err := r.db.First(&row, "display_name = ?", displayName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clients.ErrClientNotFound
		}
		return nil, errors.Wrap(err, "[clientRepo.GetByDisplayName] first")
	}
	return rowToClient(&row), nil
}

type resourceRepo struct{ db *gorm.DB }

var _ resources.Repo = (*resourceRepo)(nil)

func (r *resourceRepo) Upsert(resource *resources.Resource) error {
	if err := resource.Validate(); err != nil {
		return err
	}
	if err := r.db.Save(resourceToRow(resource)).Error; err != nil {
		return errors.Wrap(err, "[resourceRepo.Upsert] save")
	}
	return nil
}

func (r *resourceRepo) Get(username string) (*resources.Resource, error) {
	var row resourceRow
	if err := r.db.First(&row, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resources.ErrResourceNotFound
		}
		return nil, errors.Wrap(err, "[resourceRepo.Get] first")
	}
	return rowToResource(&row), nil
}

type grantRepo struct{ db *gorm.DB }

var _ grants.Repo = (*grantRepo)(nil)

func (r *grantRepo) Upsert(grant *grants.Grant) error {
	if err := r.db.Save(grantToRow(grant)).Error; err != nil {
		return errors.Wrap(err, "[grantRepo.Upsert] save")
	}
	return nil
}

// Consume deletes the grant row inside a transaction and only succeeds when
// this transaction was the one that removed it, which keeps code exchange
// single-use under concurrency.
func (r *grantRepo) Consume(clientID, code string) (*grants.Grant, error) {
	var row grantRow
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "client_id = ? AND code = ?", clientID, code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return grants.ErrInvalidGrant
			}
			return err
		}
		res := tx.Delete(&grantRow{}, "code = ?", code)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return grants.ErrInvalidGrant
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, grants.ErrInvalidGrant) {
			return nil, grants.ErrInvalidGrant
		}
		return nil, errors.Wrap(err, "[grantRepo.Consume] transaction")
	}
	return rowToGrant(&row), nil
}

type tokenRepo struct{ db *gorm.DB }

var _ token.Repo = (*tokenRepo)(nil)

// Replace runs the delete-then-insert rotation as one transaction so two
// concurrent exchanges for a client cannot leave two live pairs or none.
func (r *tokenRepo) Replace(pair *token.Pair) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&tokenRow{}, "client_id = ?", pair.ClientID).Error; err != nil {
			return err
		}
		return tx.Create(pairToRow(pair)).Error
	})
	if err != nil {
		return errors.Wrap(err, "[tokenRepo.Replace] transaction")
	}
	return nil
}

func (r *tokenRepo) GetByAccessToken(accessToken string) (*token.Pair, error) {
	var row tokenRow
	if err := r.db.First(&row, "access_token = ?", accessToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, token.ErrInvalidToken
		}
		return nil, errors.Wrap(err, "[tokenRepo.GetByAccessToken] first")
	}
	return rowToPair(&row), nil
}

func (r *tokenRepo) GetByRefreshToken(refreshToken string) (*token.Pair, error) {
	var row tokenRow
	if err := r.db.First(&row, "refresh_token = ?", refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, token.ErrInvalidToken
		}
		return nil, errors.Wrap(err, "[tokenRepo.GetByRefreshToken] first")
	}
	return rowToPair(&row), nil
}
