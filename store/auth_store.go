package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/standupbot/models"
)

type AuthStore struct {
	db *gorm.DB
}

func NewAuthStore(db *gorm.DB) *AuthStore {
	return &AuthStore{db: db}
}

func (s *AuthStore) Create(ctx context.Context, a *models.Auth) error {
	return translate("create api key", s.db.WithContext(ctx).Create(a).Error)
}

func (s *AuthStore) GetByKeyID(ctx context.Context, keyID string) (models.Auth, error) {
	var a models.Auth
	err := s.db.WithContext(ctx).Where("key_id = ?", keyID).First(&a).Error
	return a, translate("get api key", err)
}
