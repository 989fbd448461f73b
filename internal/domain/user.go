package domain

import (
	"context"
	"time"
)

// BirthdayLayout is the wire format for birthdays.
const BirthdayLayout = "2006-01-02"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" bson:"email"`
	Name         string    `gorm:"size:64;not null" bson:"name"`
	Birthday     time.Time `gorm:"type:date;not null" bson:"birthday"`
	PasswordHash string    `gorm:"size:100;not null" bson:"password_hash"`
	Role         Role      `gorm:"size:16;not null" bson:"role"`
	State        State     `gorm:"size:16;not null" bson:"state"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Profile is the public projection of a user. Every endpoint that returns a
// user returns this shape; the password hash never leaves the store layer.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	State    State  `json:"state"`
	Birthday string `json:"birthday"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		State:    u.State,
		Birthday: u.Birthday.Format(BirthdayLayout),
	}
}

// UserRepository persists users. Implementations return ErrUserNotFound for
// missing records and ErrEmailTaken when the unique email index rejects a
// write.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateState(ctx context.Context, id string, s State) error
	UpdateRole(ctx context.Context, id string, r Role) error
}
