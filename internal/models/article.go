// internal/models/article.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ArticleTags is the closed tag vocabulary shared with the client.
var ArticleTags = []string{
	"GST",
	"Income Tax",
	"Corporate Tax",
	"Audit",
	"Accounting",
	"Compliance",
	"International Tax",
	"Transfer Pricing",
	"Company Law",
	"FEMA",
	"Valuation",
	"Insolvency",
	"Financial Planning",
	"Startup Advisory",
	"Litigation",
	"Other",
}

var articleTagSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ArticleTags))
	for _, tag := range ArticleTags {
		set[tag] = struct{}{}
	}
	return set
}()

func IsArticleTag(tag string) bool {
	_, ok := articleTagSet[tag]
	return ok
}

type Article struct {
	BaseModel
	MemberID    uuid.UUID      `json:"member_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Slug        string         `json:"slug" gorm:"size:200;not null"`
	Subtitle    *string        `json:"subtitle" gorm:"size:300"`
	Summary     string         `json:"summary" gorm:"size:500;not null"`
	Content     string         `json:"content" gorm:"type:text;not null"`
	CoverImage  *string        `json:"cover_image" gorm:"type:text"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[];not null"`
	Status      ArticleStatus  `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	WordCount   int            `json:"word_count" gorm:"not null;default:0"`
	ReadingTime int            `json:"reading_time" gorm:"not null;default:1"`
	ViewCount   int64          `json:"view_count" gorm:"not null;default:0"`
	LikesCount  int64          `json:"likes_count" gorm:"not null;default:0"`
	PublishedAt *time.Time     `json:"published_at"`

	// Relationships
	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ArticleVersion is an immutable snapshot of a published article taken
// before an update is applied.
type ArticleVersion struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ArticleID uuid.UUID `json:"article_id" gorm:"type:uuid;not null;index"`
	Version   int       `json:"version" gorm:"not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Summary   string    `json:"summary" gorm:"size:500;not null"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at"`
}
