package models

import "github.com/google/uuid"

// newID fills an empty string primary key before insert.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All returns every model for AutoMigrate, parents first.
func All() []any {
	return []any{
		&Profile{},
		&Continent{},
		&Country{},
		&Article{},
		&ArticlePhoto{},
		&Comment{},
		&CommentLike{},
		&Follow{},
		&VisitedCountry{},
	}
}
