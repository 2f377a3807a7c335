package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kallydish/kallydish/internal/logging"
	"github.com/kallydish/kallydish/internal/models"
	"github.com/kallydish/kallydish/internal/mykafka"
	"github.com/kallydish/kallydish/internal/repo"
	"github.com/kallydish/kallydish/internal/transport"
)

type DishService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
}

func dishSummary(d *models.Dish) transport.DishSummary {
	return transport.DishSummary{
		ID:           d.ID,
		Name:         d.Name,
		Instructions: d.Instructions,
		Ingredients:  d.Ingredients,
		DatePosted:   d.DatePosted,
		UserID:       d.UserID,
	}
}

func publicUser(u *models.User) transport.PublicUser {
	return transport.PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// CreateDish stores a dish owned by the authenticated caller. The image
// arrives base64-encoded and is persisted as raw bytes.
func (s *DishService) CreateDish(ctx context.Context, ownerID uint, req transport.CreateDishRequest) (*models.Dish, error) {
	l := logging.FromContext(ctx).With("svc", "dish.create")

	if req.Name == "" || req.Instructions == "" || len(req.Ingredients) == 0 || req.Image == "" {
		return nil, fmt.Errorf("missing some fields: %w", ErrValidation)
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		l.Warn("create_dish_failed", "status", 400, "reason", "invalid image data", "error", err)
		return nil, fmt.Errorf("invalid image data: %w", ErrValidation)
	}

	dish := &models.Dish{
		Name:         req.Name,
		Instructions: req.Instructions,
		Ingredients:  req.Ingredients,
		DatePosted:   time.Now().UTC(),
		Image:        image,
		UserID:       ownerID,
	}

	if err := s.Repo.CreateDish(ctx, dish); err != nil {
		l.Error("create_dish_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(dish.ID), map[string]any{
		"type":   "dish_created",
		"dishID": dish.ID,
		"userID": ownerID,
		"name":   dish.Name,
	})

	l.Info("create_dish_successful", "dishID", dish.ID, "userID", ownerID)
	return dish, nil
}

// ListDishes returns every dish with its like-list expanded to the liking
// users' public profiles.
func (s *DishService) ListDishes(ctx context.Context) ([]transport.DishWithLikes, error) {
	dishes, err := s.Repo.GetDishes(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.DishWithLikes, 0, len(dishes))
	for i := range dishes {
		likers, err := s.Repo.ListLikesForDish(ctx, dishes[i].ID)
		if err != nil {
			return nil, err
		}

		likes := make([]transport.PublicUser, 0, len(likers))
		for j := range likers {
			likes = append(likes, publicUser(&likers[j]))
		}

		out = append(out, transport.DishWithLikes{
			DishSummary: dishSummary(&dishes[i]),
			UserLikes:   likes,
		})
	}

	return out, nil
}

func (s *DishService) ListDishesByUser(ctx context.Context, userID uint) ([]transport.DishSummary, error) {
	exists, err := s.Repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	dishes, err := s.Repo.GetDishesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.DishSummary, 0, len(dishes))
	for i := range dishes {
		out = append(out, dishSummary(&dishes[i]))
	}
	return out, nil
}

func (s *DishService) GetDish(ctx context.Context, id uint) (*transport.DishSummary, error) {
	dish, err := s.Repo.GetDish(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dish %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	summary := dishSummary(dish)
	return &summary, nil
}

func (s *DishService) UpdateDish(ctx context.Context, id uint, req transport.UpdateDishRequest) (*models.Dish, error) {
	l := logging.FromContext(ctx).With("svc", "dish.update")

	if req.Ingredients != nil && len(*req.Ingredients) == 0 {
		return nil, fmt.Errorf("ingredients must not be empty: %w", ErrValidation)
	}

	dish, err := s.Repo.PatchDish(ctx, id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dish %d: %w", id, ErrNotFound)
		}
		l.Error("update_dish_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(id), map[string]any{
		"type":   "dish_updated",
		"dishID": id,
	})

	return dish, nil
}

func (s *DishService) SetDishImage(ctx context.Context, id uint, imageBase64 string) error {
	l := logging.FromContext(ctx).With("svc", "dish.set_image")

	if imageBase64 == "" {
		return fmt.Errorf("no image data provided: %w", ErrValidation)
	}

	image, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		l.Warn("set_image_failed", "status", 400, "reason", "invalid image data", "error", err)
		return fmt.Errorf("invalid image data: %w", ErrValidation)
	}

	if err := s.Repo.SetDishImage(ctx, id, image); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("dish %d: %w", id, ErrNotFound)
		}
		l.Error("set_image_failed", "status", 500, "error", err)
		return err
	}

	s.publish(ctx, fmt.Sprint(id), map[string]any{
		"type":   "dish_image_updated",
		"dishID": id,
	})

	return nil
}

// ViewDishImage returns the stored image re-encoded as base64. A dish
// without an image is reported the same way as a missing dish.
func (s *DishService) ViewDishImage(ctx context.Context, id uint) (string, error) {
	dish, err := s.Repo.GetDish(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("dish %d: %w", id, ErrNotFound)
		}
		return "", err
	}

	if len(dish.Image) == 0 {
		return "", fmt.Errorf("no image for dish %d: %w", id, ErrNotFound)
	}

	return base64.StdEncoding.EncodeToString(dish.Image), nil
}

func (s *DishService) ClearDishImage(ctx context.Context, id uint) error {
	if err := s.Repo.ClearDishImage(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("dish %d: %w", id, ErrNotFound)
		}
		return err
	}

	s.publish(ctx, fmt.Sprint(id), map[string]any{
		"type":   "dish_image_deleted",
		"dishID": id,
	})

	return nil
}

func (s *DishService) DeleteDish(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "dish.delete")

	if err := s.Repo.DeleteDish(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("dish %d: %w", id, ErrNotFound)
		}
		l.Error("delete_dish_failed", "status", 500, "error", err)
		return err
	}

	s.publish(ctx, fmt.Sprint(id), map[string]any{
		"type":   "dish_deleted",
		"dishID": id,
	})

	l.Info("delete_dish_successful", "dishID", id)
	return nil
}

// LikeDish records that a user liked a dish. Repeated likes of the same
// pair surface ErrAlreadyLiked off the store's composite key, never a
// duplicate row.
func (s *DishService) LikeDish(ctx context.Context, userID, dishID uint) error {
	l := logging.FromContext(ctx).With("svc", "dish.like")

	exists, err := s.Repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	if _, err := s.Repo.GetDish(ctx, dishID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("dish %d: %w", dishID, ErrNotFound)
		}
		return err
	}

	if err := s.Repo.CreateLike(ctx, userID, dishID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("like_dish_rejected", "status", 403, "reason", "already liked", "userID", userID, "dishID", dishID)
			return ErrAlreadyLiked
		}
		l.Error("like_dish_failed", "status", 500, "error", err)
		return err
	}

	s.publish(ctx, fmt.Sprint(dishID), map[string]any{
		"type":   "dish_liked",
		"dishID": dishID,
		"userID": userID,
	})

	l.Info("like_dish_successful", "userID", userID, "dishID", dishID)
	return nil
}

func (s *DishService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Producer == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, "dish_events", key, event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_failed", "topic", "dish_events", "error", err)
	}
}
