package Models

import "gorm.io/gorm"

// Permission levels: 1 read-only clerk, 2 sales staff, 3 admin.
type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"not null"`
	Email      string `json:"email" gorm:"not null;uniqueIndex"`
	Password   []byte `json:"-" gorm:"not null"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
}
