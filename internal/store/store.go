package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/25-26J-299/smartrose-admin/internal/model"
)

// SettingStore persists small key/value settings.
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// SubscriptionStore persists admin browser push subscriptions.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// Store defines the interface for all database operations.
type Store interface {
	SettingStore
	SubscriptionStore
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// GetSetting returns the value stored under key and whether it exists.
func (s *gormStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var setting model.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return setting.Value, true, nil
}

// PutSetting creates or replaces the value stored under key.
func (s *gormStore) PutSetting(ctx context.Context, key, value string) error {
	setting := model.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (s *gormStore) DeleteSetting(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.Setting{}).Error; err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}

// SaveSubscription creates or refreshes the keys of a push subscription.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
}

// DeleteSubscription removes the subscription for endpoint.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

// GetSubscription returns gorm.ErrRecordNotFound when endpoint is unknown.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubscriptions returns every stored subscription.
func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Order("created_at").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
