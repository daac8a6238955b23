package services

import (
	"context"
	"errors"

	"goaltracker/broker"
	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/models"

	"gorm.io/gorm"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, db *database.Database, user models.User) (models.User, error)
	GetUserByUsername(ctx context.Context, db *database.Database, username string) (models.User, error)
}

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

var errUsernameTaken = NewValidationError("Username already exists")

// CreateUser inserts user after checking that the username is free. A unique
// index violation from a concurrent registration is reported the same way.
func (s *UserService) CreateUser(ctx context.Context, db *database.Database, user models.User) (models.User, error) {
	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return models.User{}, storageError("begin create user", tx.Error)
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		tx.Rollback()
		return models.User{}, storageError("check username", err)
	}
	if count > 0 {
		tx.Rollback()
		return models.User{}, errUsernameTaken
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, errUsernameTaken
		}
		return models.User{}, storageError("insert user", err)
	}

	event, err := models.NewEvent(
		string(broker.UserCreated),
		"user",
		"create",
		user.ID,
		map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
		},
	)
	if err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.User{}, storageError("insert user event", err)
	}

	if err := tx.Commit().Error; err != nil {
		return models.User{}, storageError("commit create user", err)
	}

	logger.InfoContext(ctx, "New user registered", "username", user.Username, "user_id", user.ID)
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, db *database.Database, username string) (models.User, error) {
	var user models.User
	if err := db.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, storageError("find user", err)
	}
	return user, nil
}
