package model

import "time"

type Customer struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Name      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
