package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"devmate-be/internal/entity"
	"devmate-be/internal/repository/specification"
	"devmate-be/internal/repository/unitofwork"
	"devmate-be/internal/websocket"
	"devmate-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ConnectionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Chat Message Repository", func(t *testing.T) {
		count, err := uow.ChatMessageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatMessage count: %d", count)
	})

	t.Run("Check Transactional Connection And Message", func(t *testing.T) {
		ctx := context.Background()

		alice := &entity.User{
			Id:           uuid.New(),
			FirstName:    "Integration",
			LastName:     "Alice",
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			PasswordHash: "not-a-real-hash",
		}
		bob := &entity.User{
			Id:           uuid.New(),
			FirstName:    "Integration",
			LastName:     "Bob",
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			PasswordHash: "not-a-real-hash",
		}

		err := uow.UserRepository().Create(ctx, alice)
		assert.NoError(t, err)
		err = uow.UserRepository().Create(ctx, bob)
		assert.NoError(t, err)

		// Transaction Test: everything below is rolled back.
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		request := &entity.ConnectionRequest{
			Id:         uuid.New(),
			FromUserId: alice.Id,
			ToUserId:   bob.Id,
			Status:     entity.ConnectionStatusAccepted,
		}
		err = uow.ConnectionRepository().Create(ctx, request)
		assert.NoError(t, err)

		roomID := websocket.RoomID(alice.Id, bob.Id)
		message := &entity.ChatMessage{
			Id:              uuid.New(),
			RoomId:          roomID,
			SenderId:        alice.Id,
			SenderFirstName: alice.FirstName,
			SenderLastName:  alice.LastName,
			Content:         "integration test message",
		}
		err = uow.ChatMessageRepository().Create(ctx, message)
		assert.NoError(t, err)

		// Visible inside the transaction
		found, err := uow.ChatMessageRepository().FindAll(ctx, specification.ByRoomID{RoomID: roomID})
		assert.NoError(t, err)
		assert.Len(t, found, 1)

		pair, err := uow.ConnectionRepository().FindOne(ctx, specification.ByPair{UserA: alice.Id, UserB: bob.Id})
		assert.NoError(t, err)
		if assert.NotNil(t, pair) {
			assert.Equal(t, entity.ConnectionStatusAccepted, pair.Status)
		}
	})
}
