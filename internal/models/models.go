package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"not null"                 json:"firstname"`
	LastName     string    `gorm:"not null"                 json:"lastname"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type Dish struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Instructions string    `gorm:"not null"                  json:"instructions"`
	Ingredients  []string  `gorm:"serializer:json;not null"  json:"ingredients"`
	DatePosted   time.Time `json:"date_posted"`
	Image        []byte    `json:"-"`
	UserID       uint      `gorm:"index;not null"            json:"user_id"`
}

// Like pairs a user with a dish. The composite primary key is what makes
// liking idempotent under concurrent requests.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	DishID    uint      `gorm:"primaryKey;autoIncrement:false" json:"dish_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RevokedToken is the append-only jti denylist consulted on refresh and
// logout. Rows are never updated or pruned here.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"     json:"jti"`
	CreatedAt time.Time `json:"created_at"`
}
