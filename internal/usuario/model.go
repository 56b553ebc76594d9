package usuario

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Usuario é o vendedor/gestor de um tenant. IsAdmin enxerga o tenant inteiro.
type Usuario struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"index;size:64;not null" json:"tenantId"`
	Nome      string    `gorm:"size:100;not null" json:"nome"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Senha     string    `gorm:"size:255;not null" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *Usuario) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
