package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/database"

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
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.NotificationRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Transactional Session With Greeting", func(t *testing.T) {
		ctx := context.Background()
		now := time.Now()

		user := &entity.User{
			Id:          uuid.New(),
			DisplayName: "Integration Test User",
			Role:        entity.UserRoleUser,
			Status:      entity.UserStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		session := &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    user.Id,
			Title:     constant.DefaultSessionTitle,
			CreatedAt: now,
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		greeting := &entity.ChatMessage{
			Id:            uuid.New(),
			Chat:          constant.GreetingMessage,
			Role:          constant.ChatMessageRoleModel,
			ChatSessionId: session.Id,
			CreatedAt:     now,
		}
		err = uow.ChatMessageRepository().Create(ctx, greeting)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// Read back through specifications.
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: session.Id},
			specification.UserOwnedBy{UserID: user.Id},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, constant.DefaultSessionTitle, found.Title)
		}

		messages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
		)
		assert.NoError(t, err)
		if assert.Len(t, messages, 1) {
			assert.Equal(t, constant.ChatMessageRoleModel, messages[0].Role)
		}

		// Cleanup
		assert.NoError(t, uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id))
		assert.NoError(t, uow.ChatSessionRepository().Delete(ctx, session.Id))
		assert.NoError(t, uow.UserRepository().Delete(ctx, user.Id))
	})
}
