package repo

import (
	"context"

	"github.com/kallydish/kallydish/internal/models"
)

// CreateLike inserts the (user, dish) pair. The composite primary key on
// likes rejects the duplicate, so the caller sees gorm.ErrDuplicatedKey on
// a repeated like rather than a second row.
func (r *GormRepo) CreateLike(ctx context.Context, userID, dishID uint) error {
	return r.DB.WithContext(ctx).Create(&models.Like{UserID: userID, DishID: dishID}).Error
}

func (r *GormRepo) ListLikesForDish(ctx context.Context, dishID uint) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.dish_id = ?", dishID).
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
