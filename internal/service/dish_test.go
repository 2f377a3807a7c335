package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallydish/kallydish/internal/models"
	"github.com/kallydish/kallydish/internal/repo"
	"github.com/kallydish/kallydish/internal/transport"
)

type dishTestEnv struct {
	svc  *DishService
	auth *AuthService
	user *models.User
}

func newDishTestEnv(t *testing.T) *dishTestEnv {
	t.Helper()

	rp := &repo.GormRepo{DB: newTestDB(t)}
	auth := &AuthService{
		Repo:          rp,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}

	user, err := auth.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	return &dishTestEnv{
		svc:  &DishService{Repo: rp},
		auth: auth,
		user: user,
	}
}

func (env *dishTestEnv) registerUser(t *testing.T, email string) *models.User {
	t.Helper()

	req := validRegisterRequest()
	req.Email = email
	user, err := env.auth.Register(context.Background(), req)
	require.NoError(t, err)
	return user
}

func validCreateDishRequest() transport.CreateDishRequest {
	return transport.CreateDishRequest{
		Name:         "Soup",
		Instructions: "Boil",
		Ingredients:  []string{"water", "salt"},
		Image:        base64.StdEncoding.EncodeToString([]byte("fake image bytes")),
	}
}

func TestDishService_CreateDish_Validation(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*transport.CreateDishRequest)
	}{
		{name: "empty name", mutate: func(r *transport.CreateDishRequest) { r.Name = "" }},
		{name: "empty instructions", mutate: func(r *transport.CreateDishRequest) { r.Instructions = "" }},
		{name: "no ingredients", mutate: func(r *transport.CreateDishRequest) { r.Ingredients = nil }},
		{name: "missing image", mutate: func(r *transport.CreateDishRequest) { r.Image = "" }},
		{name: "invalid base64", mutate: func(r *transport.CreateDishRequest) { r.Image = "%%%not-base64%%%" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateDishRequest()
			tt.mutate(&req)

			dish, err := env.svc.CreateDish(ctx, env.user.ID, req)
			require.Error(t, err)
			assert.Nil(t, dish)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestDishService_CreateDish_BindsOwnerAndDecodesImage(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)
	require.NotZero(t, dish.ID)

	stored, err := env.svc.Repo.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, env.user.ID, stored.UserID)
	assert.Equal(t, []byte("fake image bytes"), stored.Image)
	assert.Equal(t, []string{"water", "salt"}, stored.Ingredients)
	assert.False(t, stored.DatePosted.IsZero())
}

func TestDishService_GetDish_NotFound(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)

	dish, err := env.svc.GetDish(context.Background(), 9999)
	require.Error(t, err)
	assert.Nil(t, dish)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDishService_UpdateDish_PartialFields(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)

	newName := "Broth"
	_, err = env.svc.UpdateDish(ctx, dish.ID, transport.UpdateDishRequest{Name: &newName})
	require.NoError(t, err)

	updated, err := env.svc.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, "Broth", updated.Name)
	assert.Equal(t, "Boil", updated.Instructions)
	assert.Equal(t, []string{"water", "salt"}, updated.Ingredients)

	empty := []string{}
	_, err = env.svc.UpdateDish(ctx, dish.ID, transport.UpdateDishRequest{Ingredients: &empty})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.UpdateDish(ctx, 9999, transport.UpdateDishRequest{Name: &newName})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDishService_Image_SetViewClear(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)

	replacement := base64.StdEncoding.EncodeToString([]byte("new image"))
	require.NoError(t, env.svc.SetDishImage(ctx, dish.ID, replacement))

	encoded, err := env.svc.ViewDishImage(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, replacement, encoded)

	err = env.svc.SetDishImage(ctx, dish.ID, "%%%not-base64%%%")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	err = env.svc.SetDishImage(ctx, 9999, replacement)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.svc.ClearDishImage(ctx, dish.ID))
	_, err = env.svc.ViewDishImage(ctx, dish.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDishService_LikeDish_Idempotent(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)

	require.NoError(t, env.svc.LikeDish(ctx, env.user.ID, dish.ID))

	err = env.svc.LikeDish(ctx, env.user.ID, dish.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	var count int64
	require.NoError(t, env.svc.Repo.DB.Model(&models.Like{}).
		Where("user_id = ? AND dish_id = ?", env.user.ID, dish.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDishService_LikeDish_MissingSides(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)

	err = env.svc.LikeDish(ctx, 9999, dish.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.svc.LikeDish(ctx, env.user.ID, 9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDishService_DeleteDish_CascadesLikes(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)
	require.NoError(t, env.svc.LikeDish(ctx, env.user.ID, dish.ID))

	require.NoError(t, env.svc.DeleteDish(ctx, dish.ID))

	_, err = env.svc.GetDish(ctx, dish.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, env.svc.Repo.DB.Model(&models.Like{}).
		Where("dish_id = ?", dish.ID).
		Count(&count).Error)
	assert.EqualValues(t, 0, count)

	err = env.svc.DeleteDish(ctx, dish.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDishService_ListDishes_ExpandsLikes(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	dish, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)

	liker := env.registerUser(t, "grace@example.com")
	require.NoError(t, env.svc.LikeDish(ctx, liker.ID, dish.ID))

	list, err := env.svc.ListDishes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, dish.ID, list[0].ID)
	require.Len(t, list[0].UserLikes, 1)
	assert.Equal(t, liker.ID, list[0].UserLikes[0].ID)
	assert.Equal(t, "grace@example.com", list[0].UserLikes[0].Email)
}

func TestDishService_ListDishesByUser(t *testing.T) {
	t.Parallel()

	env := newDishTestEnv(t)
	ctx := context.Background()

	author := env.registerUser(t, "grace@example.com")

	mine, err := env.svc.CreateDish(ctx, env.user.ID, validCreateDishRequest())
	require.NoError(t, err)
	theirs, err := env.svc.CreateDish(ctx, author.ID, validCreateDishRequest())
	require.NoError(t, err)

	// liking someone else's dish must not make it "authored by" the liker
	require.NoError(t, env.svc.LikeDish(ctx, env.user.ID, theirs.ID))

	dishes, err := env.svc.ListDishesByUser(ctx, env.user.ID)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, mine.ID, dishes[0].ID)

	_, err = env.svc.ListDishesByUser(ctx, 9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
