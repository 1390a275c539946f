package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the public face of an account. Its ID is the user id issued by
// the auth service, so there is no separate users table.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"size:255;index" json:"email,omitempty"`
	Username  string    `gorm:"size:100;uniqueIndex" json:"username"`
	FullName  string    `gorm:"size:255" json:"full_name,omitempty"`
	AvatarURL string    `gorm:"size:500" json:"avatar_url,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	// Role is "user" or "admin". Only the role lookup reads it for authorization.
	Role string `gorm:"size:20;not null;default:'user'" json:"role"`
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	newID(&p.ID)
	if p.Role == "" {
		p.Role = "user"
	}
	return nil
}

// OwnerID implements gate.Ownable: a profile is owned by itself.
func (p *Profile) OwnerID() string { return p.ID }

// DisplayName prefers the full name, then the username.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;size:36" json:"follower_id"`
	FollowingID string    `gorm:"primaryKey;size:36;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnerID implements gate.Ownable: the edge belongs to the follower.
func (f *Follow) OwnerID() string { return f.FollowerID }
