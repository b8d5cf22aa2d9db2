package main

import (
	"log"
	"os"

	"devmate-be/internal/entity"
	"devmate-be/internal/model"
	"devmate-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	About     string
}

var demoUsers = []seedUser{
	{"Ada", "Lovelace", "ada@devmate.dev", "Password123!", "Backend engineer into distributed systems"},
	{"Grace", "Hopper", "grace@devmate.dev", "Password123!", "Compiler nerd, always up for pairing"},
	{"Linus", "Torvalds", "linus@devmate.dev", "Password123!", "Kernel hacker looking for OSS collaborators"},
	{"Margaret", "Hamilton", "margaret@devmate.dev", "Password123!", "Safety-critical software, Go newcomer"},
}

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo users...")

	ids := make(map[string]uuid.UUID, len(demoUsers))
	for _, u := range demoUsers {
		var existing model.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			color.Yellow("User %s already exists, skipping...", u.Email)
			ids[u.Email] = existing.Id
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Error: Failed to hash password: %v", err)
		}

		about := u.About
		row := model.User{
			Id:           uuid.New(),
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
			PasswordHash: string(hash),
			About:        &about,
		}
		if err := db.Create(&row).Error; err != nil {
			log.Fatalf("Error: Failed to create user %s: %v", u.Email, err)
		}
		ids[u.Email] = row.Id
		color.Green("Created user: %s %s <%s>", u.FirstName, u.LastName, u.Email)
	}

	color.Cyan("Seeding connections...")

	// ada<->grace accepted so the chat demo works out of the box,
	// linus->ada left pending for the review flow.
	seedConnection(db, ids["ada@devmate.dev"], ids["grace@devmate.dev"], entity.ConnectionStatusAccepted)
	seedConnection(db, ids["linus@devmate.dev"], ids["ada@devmate.dev"], entity.ConnectionStatusInterested)
	seedConnection(db, ids["margaret@devmate.dev"], ids["grace@devmate.dev"], entity.ConnectionStatusInterested)

	color.Green("✅ Seeding completed!")
}

func seedConnection(db *gorm.DB, from, to uuid.UUID, status entity.ConnectionStatus) {
	var existing model.ConnectionRequest
	err := db.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", from, to, to, from).
		First(&existing).Error
	if err == nil {
		color.Yellow("Connection %s -> %s already exists, skipping...", from, to)
		return
	}

	row := model.ConnectionRequest{
		Id:         uuid.New(),
		FromUserId: from,
		ToUserId:   to,
		Status:     string(status),
	}
	if err := db.Create(&row).Error; err != nil {
		log.Fatalf("Error: Failed to create connection: %v", err)
	}
	color.Green("Created connection %s -> %s (%s)", from, to, status)
}
