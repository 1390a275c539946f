package policy

import (
	"context"
	"errors"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/models"
	"gorm.io/gorm"
)

// RoleResolver reports the stored role of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (gate.Role, error)
}

// DBRoleResolver reads roles from the profiles table. It must be given the
// service handle: row-level restrictions on profiles do not apply to it.
type DBRoleResolver struct {
	DB *gorm.DB
}

// NewDBRoleResolver creates a database-backed role resolver.
func NewDBRoleResolver(db *gorm.DB) *DBRoleResolver {
	return &DBRoleResolver{DB: db}
}

// RoleOf returns the user's role. A user without a profile is a plain user.
func (r *DBRoleResolver) RoleOf(ctx context.Context, userID string) (gate.Role, error) {
	var p models.Profile
	err := r.DB.WithContext(ctx).Select("id", "role").Where("id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gate.RoleUser, nil
	}
	if err != nil {
		return gate.RoleUser, err
	}
	return gate.ParseRole(p.Role), nil
}
