package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v4().
// Email length follows the RFC 3696 maximum of 320 characters.
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email          string    `gorm:"type:varchar(320);uniqueIndex;not null"`
	HashedPassword string    `gorm:"type:varchar(200);not null"`
	CreatedAt      time.Time `gorm:"default:now()"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
