package bootstrap

import (
	"context"

	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Super administrator"},
		{Name: "member", Description: "Community member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
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

// SeedDev creates a development admin and a couple of streamers so the gift
// and claim flows can be exercised locally. Never run in production.
func SeedDev(db *gorm.DB, userRepo repository.UserRepository, streamerRepo repository.StreamerRepository) error {
	ctx := context.Background()

	adminRole, err := userRepo.FindRoleByName(ctx, "admin")
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("username = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin := model.User{
			Username:     "admin",
			Email:        "admin@glimpanel.local",
			PasswordHash: string(hashed),
			RoleID:       &adminRole.ID,
		}
		if err := userRepo.Create(ctx, &admin); err != nil {
			return err
		}
		logger.Info("dev admin user seeded (admin / admin123)")
	}

	var streamerCount int64
	if err := db.Model(&model.Streamer{}).Count(&streamerCount).Error; err != nil {
		return err
	}
	if streamerCount == 0 {
		streamers := []model.Streamer{
			{Name: "Arla Plays", Slug: "arla-plays", Platform: "twitch", ChannelURL: "https://twitch.tv/arlaplays"},
			{Name: "Budi Gaming", Slug: "budi-gaming", Platform: "youtube", ChannelURL: "https://youtube.com/@budigaming"},
		}
		for i := range streamers {
			if err := streamerRepo.Create(ctx, &streamers[i]); err != nil {
				return err
			}
		}
		logger.Info("dev streamers seeded")
	}

	return nil
}
