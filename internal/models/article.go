package models

import (
	"time"

	"gorm.io/gorm"
)

// ArticleStatus is the moderation state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft    ArticleStatus = "draft"
	ArticleStatusPending  ArticleStatus = "pending"
	ArticleStatusApproved ArticleStatus = "approved"
	ArticleStatusRejected ArticleStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPending, ArticleStatusApproved, ArticleStatusRejected:
		return true
	}
	return false
}

// Article is a travel story. Only approved articles are publicly readable.
// Implements gate.Ownable through AuthorID.
type Article struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	AuthorID string   `gorm:"size:36;index;not null" json:"author_id"`
	Author   *Profile `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Title       string        `gorm:"size:255;not null" json:"title"`
	Slug        string        `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt     string        `gorm:"size:500" json:"excerpt,omitempty"`
	Content     string        `gorm:"type:text" json:"content"`
	CountryCode string        `gorm:"size:2;index" json:"country_code,omitempty"`
	Status      ArticleStatus `gorm:"size:20;index;not null;default:'draft'" json:"status"`

	// Moderation
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `gorm:"size:36" json:"reviewed_by,omitempty"`
	RejectionReason string     `gorm:"size:500" json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`

	// Main image, hosted by the image service.
	CoverURL      string `gorm:"size:500" json:"cover_url,omitempty"`
	CoverPublicID string `gorm:"size:255" json:"cover_public_id,omitempty"`
	CoverWidth    *int   `json:"cover_width,omitempty"`
	CoverHeight   *int   `json:"cover_height,omitempty"`
	CoverAlt      string `gorm:"size:255" json:"cover_alt,omitempty"`

	Photos []ArticlePhoto `gorm:"foreignKey:ArticleID" json:"photos,omitempty"`
}

func (a *Article) BeforeCreate(_ *gorm.DB) error {
	newID(&a.ID)
	if a.Status == "" {
		a.Status = ArticleStatusDraft
	}
	return nil
}

// OwnerID implements gate.Ownable.
func (a *Article) OwnerID() string { return a.AuthorID }

// IsPublic reports whether the article may be served to anonymous readers.
func (a *Article) IsPublic() bool { return a.Status == ArticleStatusApproved }

// ArticlePhoto is one image of an article's gallery.
type ArticlePhoto struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ArticleID  string    `gorm:"size:36;index;not null" json:"article_id"`
	UploaderID string    `gorm:"size:36;not null" json:"uploader_id"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	PublicID   string    `gorm:"size:255;not null" json:"public_id"`
	Width      *int      `json:"width,omitempty"`
	Height     *int      `json:"height,omitempty"`
	Alt        string    `gorm:"size:255" json:"alt,omitempty"`
	Caption    string    `gorm:"size:500" json:"caption,omitempty"`
	Position   int       `gorm:"default:0" json:"position"`
}

func (p *ArticlePhoto) BeforeCreate(_ *gorm.DB) error {
	newID(&p.ID)
	return nil
}
