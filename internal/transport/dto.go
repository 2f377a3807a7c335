package transport

import "time"

type RegisterRequest struct {
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateDishRequest struct {
	Name         string   `json:"name"           validate:"required"`
	Instructions string   `json:"instructions"   validate:"required"`
	Ingredients  []string `json:"ingredients"    validate:"required,min=1"`
	Image        string   `json:"dish_image_url" validate:"required"`
}

// UpdateDishRequest carries a partial update; nil fields stay untouched.
type UpdateDishRequest struct {
	Name         *string   `json:"name"`
	Instructions *string   `json:"instructions"`
	Ingredients  *[]string `json:"ingredients"`
}

type SetDishImageRequest struct {
	Image string `json:"dish_image_data" validate:"required"`
}

// PublicUser is the like-list projection of a user. The password hash never
// leaves the models layer.
type PublicUser struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type DishSummary struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Ingredients  []string  `json:"ingredients"`
	DatePosted   time.Time `json:"date_posted"`
	UserID       uint      `json:"user_id"`
}

type DishWithLikes struct {
	DishSummary
	UserLikes []PublicUser `json:"user_likes"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	UserID       uint
}
