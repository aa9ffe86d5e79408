package user

import (
	"time"

	"account-service/internal/domain"
)

type UserModel struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:128;not null;default:''"`
	PasswordHash string `gorm:"size:100;not null"`
	IsSuperuser  bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		IsSuperuser:  m.IsSuperuser,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromRecord(rec domain.NewUserRecord) *UserModel {
	return &UserModel{
		Email:        rec.Email,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		IsSuperuser:  rec.IsSuperuser,
	}
}

// Columns maps a partial update to column assignments. Only non-nil fields are present.
func Columns(ch domain.UserChanges) map[string]any {
	cols := make(map[string]any, 4)
	if ch.Email != nil {
		cols["email"] = *ch.Email
	}
	if ch.Name != nil {
		cols["name"] = *ch.Name
	}
	if ch.PasswordHash != nil {
		cols["password_hash"] = *ch.PasswordHash
	}
	if ch.IsSuperuser != nil {
		cols["is_superuser"] = *ch.IsSuperuser
	}
	return cols
}
