package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nholden/beacon/internal/auth"
	"github.com/nholden/beacon/internal/config"
	"github.com/nholden/beacon/internal/database"
	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/logging"
)

type seedUser struct {
	Email      string
	FullName   string
	Password   string
	ProfilePic string
	IsAdmin    bool
}

var seedUsers = []seedUser{
	{Email: "boss@gmail.com", FullName: "Boss", Password: "boss1234", ProfilePic: "/boss_640.png", IsAdmin: true},
	{Email: "tom@gmail.com", FullName: "Tom Boysen", Password: "35rtuf32", ProfilePic: "https://randomuser.me/api/portraits/men/1.jpg"},
	{Email: "jerry@gmail.com", FullName: "Jerry Clancy", Password: "dsg45345s", ProfilePic: "https://randomuser.me/api/portraits/men/2.jpg"},
	{Email: "mike88@gmail.com", FullName: "Mike Harrington", Password: "x4v29dks", ProfilePic: "https://randomuser.me/api/portraits/men/3.jpg"},
	{Email: "david.smith@gmail.com", FullName: "David Smith", Password: "d4vidSm1th!", ProfilePic: "https://randomuser.me/api/portraits/men/4.jpg"},
	{Email: "ronnie.b@gmail.com", FullName: "Ronnie Blake", Password: "ronnieB99", ProfilePic: "https://randomuser.me/api/portraits/men/5.jpg"},
	{Email: "leo.carter@gmail.com", FullName: "Leo Carter", Password: "le0ctpass", ProfilePic: "https://randomuser.me/api/portraits/men/6.jpg"},
	{Email: "brad.martin@gmail.com", FullName: "Brad Martin", Password: "brad1234", ProfilePic: "https://randomuser.me/api/portraits/men/7.jpg"},
	{Email: "ryan.james@gmail.com", FullName: "Ryan James", Password: "rYJamz77", ProfilePic: "https://randomuser.me/api/portraits/men/8.jpg"},
	{Email: "samuel.d@gmail.com", FullName: "Samuel Donovan", Password: "samD0n@van", ProfilePic: "https://randomuser.me/api/portraits/men/9.jpg"},
	{Email: "nate.williams@gmail.com", FullName: "Nate Williams", Password: "willnate2025", ProfilePic: "https://randomuser.me/api/portraits/men/10.jpg"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo accounts",
	Run: func(cmd *cobra.Command, args []string) {
		logging.New()
		cfg := config.New()

		ctx := context.Background()
		db, err := database.NewDB(ctx, cfg)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close(ctx)

		users := database.NewUserStore(db)

		for _, su := range seedUsers {
			hash, err := auth.HashPassword(su.Password)
			if err != nil {
				slog.Error("Failed to hash password", "email", su.Email, "error", err)
				os.Exit(1)
			}

			_, err = users.Create(ctx, &domain.User{
				FullName:   su.FullName,
				Email:      su.Email,
				Password:   hash,
				ProfilePic: su.ProfilePic,
				IsAdmin:    su.IsAdmin,
			})
			switch {
			case errors.Is(err, domain.ErrEmailExists):
				slog.Info("User already exists, skipping", "email", su.Email)
			case err != nil:
				slog.Error("Failed to create user", "email", su.Email, "error", err)
				os.Exit(1)
			default:
				slog.Info("Seeded user", "email", su.Email, "admin", su.IsAdmin)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
