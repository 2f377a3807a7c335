package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kallydish/kallydish/internal/models"
)

func (r *GormRepo) TokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeToken appends the jti to the denylist. The unique index on jti makes
// the insert the arbiter when two requests race to revoke the same token:
// exactly one wins, the loser sees ErrTokenAlreadyRevoked.
func (r *GormRepo) RevokeToken(ctx context.Context, jti string) error {
	err := r.DB.WithContext(ctx).Create(&models.RevokedToken{JTI: jti}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTokenAlreadyRevoked
	}
	return err
}

var ErrTokenAlreadyRevoked = errors.New("token already revoked")
