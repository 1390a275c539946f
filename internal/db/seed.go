package db

import (
	"fmt"

	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/slug"
	"gorm.io/gorm"
)

var continents = []models.Continent{
	{Code: "AF", Name: "Africa"},
	{Code: "AN", Name: "Antarctica"},
	{Code: "AS", Name: "Asia"},
	{Code: "EU", Name: "Europe"},
	{Code: "NA", Name: "North America"},
	{Code: "OC", Name: "Oceania"},
	{Code: "SA", Name: "South America"},
}

var countries = []models.Country{
	{Code: "AR", Name: "Argentina", ContinentCode: "SA", Capital: "Buenos Aires", FlagEmoji: "🇦🇷"},
	{Code: "AU", Name: "Australia", ContinentCode: "OC", Capital: "Canberra", FlagEmoji: "🇦🇺"},
	{Code: "BR", Name: "Brazil", ContinentCode: "SA", Capital: "Brasília", FlagEmoji: "🇧🇷"},
	{Code: "CA", Name: "Canada", ContinentCode: "NA", Capital: "Ottawa", FlagEmoji: "🇨🇦"},
	{Code: "CL", Name: "Chile", ContinentCode: "SA", Capital: "Santiago", FlagEmoji: "🇨🇱"},
	{Code: "CN", Name: "China", ContinentCode: "AS", Capital: "Beijing", FlagEmoji: "🇨🇳"},
	{Code: "DE", Name: "Germany", ContinentCode: "EU", Capital: "Berlin", FlagEmoji: "🇩🇪"},
	{Code: "EG", Name: "Egypt", ContinentCode: "AF", Capital: "Cairo", FlagEmoji: "🇪🇬"},
	{Code: "ES", Name: "Spain", ContinentCode: "EU", Capital: "Madrid", FlagEmoji: "🇪🇸"},
	{Code: "FR", Name: "France", ContinentCode: "EU", Capital: "Paris", FlagEmoji: "🇫🇷"},
	{Code: "GB", Name: "United Kingdom", ContinentCode: "EU", Capital: "London", FlagEmoji: "🇬🇧"},
	{Code: "GR", Name: "Greece", ContinentCode: "EU", Capital: "Athens", FlagEmoji: "🇬🇷"},
	{Code: "ID", Name: "Indonesia", ContinentCode: "AS", Capital: "Jakarta", FlagEmoji: "🇮🇩"},
	{Code: "IN", Name: "India", ContinentCode: "AS", Capital: "New Delhi", FlagEmoji: "🇮🇳"},
	{Code: "IS", Name: "Iceland", ContinentCode: "EU", Capital: "Reykjavík", FlagEmoji: "🇮🇸"},
	{Code: "IT", Name: "Italy", ContinentCode: "EU", Capital: "Rome", FlagEmoji: "🇮🇹"},
	{Code: "JP", Name: "Japan", ContinentCode: "AS", Capital: "Tokyo", FlagEmoji: "🇯🇵"},
	{Code: "KE", Name: "Kenya", ContinentCode: "AF", Capital: "Nairobi", FlagEmoji: "🇰🇪"},
	{Code: "MA", Name: "Morocco", ContinentCode: "AF", Capital: "Rabat", FlagEmoji: "🇲🇦"},
	{Code: "MX", Name: "Mexico", ContinentCode: "NA", Capital: "Mexico City", FlagEmoji: "🇲🇽"},
	{Code: "NO", Name: "Norway", ContinentCode: "EU", Capital: "Oslo", FlagEmoji: "🇳🇴"},
	{Code: "NZ", Name: "New Zealand", ContinentCode: "OC", Capital: "Wellington", FlagEmoji: "🇳🇿"},
	{Code: "PE", Name: "Peru", ContinentCode: "SA", Capital: "Lima", FlagEmoji: "🇵🇪"},
	{Code: "PT", Name: "Portugal", ContinentCode: "EU", Capital: "Lisbon", FlagEmoji: "🇵🇹"},
	{Code: "TH", Name: "Thailand", ContinentCode: "AS", Capital: "Bangkok", FlagEmoji: "🇹🇭"},
	{Code: "TZ", Name: "Tanzania", ContinentCode: "AF", Capital: "Dodoma", FlagEmoji: "🇹🇿"},
	{Code: "US", Name: "United States", ContinentCode: "NA", Capital: "Washington, D.C.", FlagEmoji: "🇺🇸"},
	{Code: "VN", Name: "Vietnam", ContinentCode: "AS", Capital: "Hanoi", FlagEmoji: "🇻🇳"},
	{Code: "ZA", Name: "South Africa", ContinentCode: "AF", Capital: "Pretoria", FlagEmoji: "🇿🇦"},
}

// Seed inserts the continent and country reference data.
// Existing rows are left untouched, so it is safe to run on every start.
func Seed(db *gorm.DB) error {
	for _, c := range continents {
		c.Slug = slug.Make(c.Name)
		if err := db.Where(models.Continent{Code: c.Code}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed continent %s: %w", c.Code, err)
		}
	}
	for _, c := range countries {
		c.Slug = slug.Make(c.Name)
		if err := db.Where(models.Country{Code: c.Code}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed country %s: %w", c.Code, err)
		}
	}
	return nil
}
