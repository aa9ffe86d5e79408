package domain

import (
	"context"
	"time"
)

type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser is registration input. Password is plaintext and never reaches the store.
type NewUser struct {
	Email       string
	Password    string
	Name        string
	IsSuperuser bool
}

// ProfilePatch is what a user may change about themselves. Nil fields are left untouched.
type ProfilePatch struct {
	Email    *string
	Password *string
	Name     *string
}

func (p ProfilePatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.Name == nil
}

// UserPatch is the administrative variant: any field, including the superuser flag.
type UserPatch struct {
	ProfilePatch
	IsSuperuser *bool
}

func (p UserPatch) Empty() bool { return p.ProfilePatch.Empty() && p.IsSuperuser == nil }

// NewUserRecord is the store-side insert input.
type NewUserRecord struct {
	Email        string
	Name         string
	PasswordHash string
	IsSuperuser  bool
}

// UserChanges is the store-side partial update input.
type UserChanges struct {
	Email        *string
	Name         *string
	PasswordHash *string
	IsSuperuser  *bool
}

func (c UserChanges) Empty() bool {
	return c.Email == nil && c.Name == nil && c.PasswordHash == nil && c.IsSuperuser == nil
}

// UserRepository returns ErrNotFound for missing rows and ErrConflict on unique index violations.
type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, rec NewUserRecord) (*User, error)
	UpdateFields(ctx context.Context, id uint64, ch UserChanges) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, error)
	Delete(ctx context.Context, id uint64) error
}
