package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reader comment on an article. Deletion is soft.
type Comment struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ArticleID string   `gorm:"size:36;index;not null" json:"article_id"`
	AuthorID  string   `gorm:"size:36;index;not null" json:"author_id"`
	Author    *Profile `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string   `gorm:"type:text;not null" json:"content"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	newID(&c.ID)
	return nil
}

// OwnerID implements gate.Ownable.
func (c *Comment) OwnerID() string { return c.AuthorID }

// CommentLike records that UserID likes CommentID. At most one row per pair.
type CommentLike struct {
	CommentID string    `gorm:"primaryKey;size:36" json:"comment_id"`
	UserID    string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerID implements gate.Ownable.
func (l *CommentLike) OwnerID() string { return l.UserID }
