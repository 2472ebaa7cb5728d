package db

import (
	"errors"
	"strings"

	"github.com/ikignosis/sopy/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors for the config store. Callers branch on these to produce
// protocol-level responses; anything else is a storage-engine failure.
var (
	// ErrNotFound indicates a get/remove targeted a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates an insert violated a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store wraps the gorm handle with the config-store CRUD surface. All writes
// are single-record and rely on SQLite's per-statement atomicity; the store
// performs no locking of its own.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an initialized gorm database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ===== Admin credentials =====

// PutCredential inserts or replaces the credentials stored under name.
func (s *Store) PutCredential(name, credentials string) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.AdminCredential{Name: name, Credentials: credentials}).Error
}

// DeleteCredential removes the credentials stored under name.
// Returns ErrNotFound if no row was deleted.
func (s *Store) DeleteCredential(name string) error {
	res := s.db.Where("name = ?", name).Delete(&models.AdminCredential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCredential returns the credentials stored under name.
func (s *Store) GetCredential(name string) (string, error) {
	var cred models.AdminCredential
	if err := s.db.Where("name = ?", name).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return cred.Credentials, nil
}

// ListCredentialNames returns all credential names, without the credentials.
func (s *Store) ListCredentialNames() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.AdminCredential{}).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// ===== User API keys =====

// CreateUserAPIKey inserts a new user-facing API key.
// Returns ErrDuplicateKey if the key already exists.
func (s *Store) CreateUserAPIKey(apiKey, description string) error {
	err := s.db.Create(&models.UserAPIKey{
		APIKey:      apiKey,
		Description: description,
		IsActive:    true,
	}).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// DeleteUserAPIKey removes a user API key by its key string.
func (s *Store) DeleteUserAPIKey(apiKey string) error {
	res := s.db.Where("api_key = ?", apiKey).Delete(&models.UserAPIKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserAPIKey returns the user API key record with the given id.
func (s *Store) GetUserAPIKey(id uint) (*models.UserAPIKey, error) {
	var key models.UserAPIKey
	if err := s.db.First(&key, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

// ListUserAPIKeys returns all user API key records ordered by id.
func (s *Store) ListUserAPIKeys() ([]models.UserAPIKey, error) {
	var keys []models.UserAPIKey
	if err := s.db.Order("id").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// SetUserAPIKeyActive flips the active flag on a user API key by id.
// Returns ErrNotFound if the id does not exist.
func (s *Store) SetUserAPIKeyActive(id uint, active bool) error {
	res := s.db.Model(&models.UserAPIKey{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== Backends =====

// AddBackend registers url for provider. Re-adding an existing (provider, url)
// pair is a no-op. Returns whether a new row was inserted.
func (s *Store) AddBackend(provider, url string) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Backend{Provider: provider, URL: url})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveBackend deletes the (provider, url) pair.
// Returns ErrNotFound if the pair was not registered.
func (s *Store) RemoveBackend(provider, url string) error {
	res := s.db.Where("provider = ? AND url = ?", provider, url).Delete(&models.Backend{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBackends returns every provider with its URLs in insertion order.
func (s *Store) ListBackends() (map[string][]string, error) {
	var rows []models.Backend
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	backends := make(map[string][]string)
	for _, b := range rows {
		backends[b.Provider] = append(backends[b.Provider], b.URL)
	}
	return backends, nil
}

// GetBackendURLs returns the URLs registered for provider in insertion order.
// Returns ErrNotFound if the provider has no URLs.
func (s *Store) GetBackendURLs(provider string) ([]string, error) {
	var urls []string
	if err := s.db.Model(&models.Backend{}).Where("provider = ?", provider).
		Order("id").Pluck("url", &urls).Error; err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, ErrNotFound
	}
	return urls, nil
}

// ===== Model mappings =====

// PutModelMapping assigns modelName to provider, replacing any previous
// assignment for the same model name.
func (s *Store) PutModelMapping(modelName, provider string) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.ModelMapping{ModelName: modelName, Provider: provider}).Error
}

// DeleteModelMapping removes the mapping for modelName.
func (s *Store) DeleteModelMapping(modelName string) error {
	res := s.db.Where("model_name = ?", modelName).Delete(&models.ModelMapping{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListModelMappings returns model name -> provider for every mapping.
func (s *Store) ListModelMappings() (map[string]string, error) {
	var rows []models.ModelMapping
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	mappings := make(map[string]string, len(rows))
	for _, m := range rows {
		mappings[m.ModelName] = m.Provider
	}
	return mappings, nil
}

// GetModelMapping returns the provider assigned to modelName.
func (s *Store) GetModelMapping(modelName string) (string, error) {
	var mapping models.ModelMapping
	if err := s.db.Where("model_name = ?", modelName).First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return mapping.Provider, nil
}

// isUniqueViolation detects unique-constraint failures across the gorm error
// translator and the raw sqlite error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
