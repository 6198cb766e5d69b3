package model

import "time"

// UserModel mirrors the 'users' table.
type UserModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Handle       string  `gorm:"column:tg_username;type:varchar(64);uniqueIndex;not null"`
	Points       int     `gorm:"not null;default:0;index"`
	PasswordHash *string `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
