package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kallydish/kallydish/internal/models"
	"github.com/kallydish/kallydish/internal/transport"
)

func (r *GormRepo) CreateDish(ctx context.Context, dish *models.Dish) error {
	return r.DB.WithContext(ctx).Create(dish).Error
}

func (r *GormRepo) GetDish(ctx context.Context, id uint) (*models.Dish, error) {
	var dish models.Dish
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *GormRepo) GetDishes(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *GormRepo) GetDishesByUser(ctx context.Context, userID uint) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *GormRepo) PatchDish(ctx context.Context, id uint, req transport.UpdateDishRequest) (*models.Dish, error) {
	var dish models.Dish
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&dish).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		dish.Name = *req.Name
	}
	if req.Instructions != nil {
		dish.Instructions = *req.Instructions
	}
	if req.Ingredients != nil {
		dish.Ingredients = *req.Ingredients
	}

	if err := r.DB.WithContext(ctx).Save(&dish).Error; err != nil {
		return nil, err
	}

	return &dish, nil
}

func (r *GormRepo) SetDishImage(ctx context.Context, id uint, image []byte) error {
	res := r.DB.WithContext(ctx).Model(&models.Dish{}).
		Where("id = ?", id).
		Update("image", image)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearDishImage(ctx context.Context, id uint) error {
	return r.SetDishImage(ctx, id, nil)
}

// DeleteDish removes the dish and its like rows in one transaction so a
// concurrent reader never sees a like pointing at a missing dish.
func (r *GormRepo) DeleteDish(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dish_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Dish{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
