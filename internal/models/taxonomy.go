// internal/models/taxonomy.go
package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name  string `json:"name" gorm:"size:150;not null;uniqueIndex"`
	Field string `json:"field" gorm:"size:100;index"`

	Services []Service `json:"services,omitempty" gorm:"foreignKey:CategoryID"`
}

type Service struct {
	BaseModel
	Name       string     `json:"name" gorm:"size:150;not null;uniqueIndex"`
	CategoryID *uuid.UUID `json:"category_id" gorm:"type:uuid;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
