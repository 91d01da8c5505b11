// internal/models/post.go
package models

import "github.com/google/uuid"

type Post struct {
	BaseModel
	MemberID     uuid.UUID `json:"member_id" gorm:"type:uuid;not null;index"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	ImageData    *string   `json:"image_data" gorm:"type:text"`
	LikesCount   int64     `json:"likes_count" gorm:"not null;default:0"`
	RepostsCount int64     `json:"reposts_count" gorm:"not null;default:0"`

	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

type AuditLog struct {
	BaseModel
	MemberID     *uuid.UUID `json:"member_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	Status       int        `json:"status"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}
