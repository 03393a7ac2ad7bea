package bootstrap

import (
	"log"

	"anoa.com/salonstreak/internal/entity"
	searchService "anoa.com/salonstreak/internal/modules/search/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Salon{},
		&entity.SalonMember{},
		&entity.PostingLog{},
		&entity.SocialPostSignal{},
		&entity.StreakDay{},
		&entity.UserStreak{},
		&entity.UserBadge{},
		&entity.ChallengeDefinition{},
		&entity.UserChallenge{},
		&entity.SalonChallenge{},
		&entity.StylistChallengeProgress{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleOwner, Description: "Salon owner"},
		{Name: entity.RoleStylist, Description: "Stylist"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@salonstreak.com").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@salonstreak.com",
		PasswordHash: string(hashedPasswordBytes),
		DisplayName:  "Administrator",
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@salonstreak.com")
	log.Println("   Password: admin123")

	return nil
}

// SeedChallengeDefinitions installs the read-only challenge catalog.
func SeedChallengeDefinitions(db *gorm.DB) error {
	catalog := []entity.ChallengeDefinition{
		{
			Slug:         "7-day-kickstart",
			Title:        "7-Day Kickstart",
			Description:  "Post one look a day for a week to get your page moving.",
			DurationDays: 7,
		},
		{
			Slug:         "14-day-consistency",
			Title:        "14-Day Consistency",
			Description:  "Two weeks of daily posts. Build the habit for real.",
			DurationDays: 14,
		},
		{
			Slug:         "30-day-portfolio",
			Title:        "30-Day Portfolio",
			Description:  "A month of daily work builds a portfolio clients trust.",
			DurationDays: 30,
		},
		{
			Slug:          "90-day-momentum",
			Title:         "90-Day Momentum",
			Description:   "The long game. Ninety days, sixty posts minimum.",
			DurationDays:  90,
			PostsRequired: 60,
		},
	}

	for _, def := range catalog {
		var count int64
		if err := db.Model(&entity.ChallengeDefinition{}).
			Where("slug = ?", def.Slug).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&def).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// IndexCatalog pushes the full catalog into search. Failures are logged, not
// fatal: the catalog listing falls back to the database.
func IndexCatalog(db *gorm.DB, search searchService.CatalogSearchService) {
	var defs []entity.ChallengeDefinition
	if err := db.Find(&defs).Error; err != nil {
		log.Printf("Failed to load catalog for indexing: %v", err)
		return
	}

	if err := search.IndexDefinitions(defs); err != nil {
		log.Printf("Failed to index catalog: %v", err)
	}
}
