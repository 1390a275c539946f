package models

import "time"

// Continent is reference data keyed by a two-letter code (EU, AS, ...).
type Continent struct {
	Code string `gorm:"primaryKey;size:2" json:"code"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex" json:"slug"`
}

// Country is reference data keyed by its ISO 3166-1 alpha-2 code.
type Country struct {
	Code          string `gorm:"primaryKey;size:2" json:"code"`
	Name          string `gorm:"size:100;not null" json:"name"`
	Slug          string `gorm:"size:100;uniqueIndex" json:"slug"`
	ContinentCode string `gorm:"size:2;index;not null" json:"continent_code"`
	Capital       string `gorm:"size:100" json:"capital,omitempty"`
	FlagEmoji     string `gorm:"size:16" json:"flag_emoji,omitempty"`
}

// VisitedCountry marks a country as visited by a user.
type VisitedCountry struct {
	UserID      string     `gorm:"primaryKey;size:36" json:"user_id"`
	CountryCode string     `gorm:"primaryKey;size:2" json:"country_code"`
	Country     *Country   `gorm:"foreignKey:CountryCode" json:"country,omitempty"`
	VisitedAt   *time.Time `json:"visited_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OwnerID implements gate.Ownable.
func (v *VisitedCountry) OwnerID() string { return v.UserID }
