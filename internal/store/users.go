package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/pkg/common"
)

// ErrUsernameExists is returned when registering a taken username.
var ErrUsernameExists = errors.New("username already exists")

// ErrBadCredentials is returned when authentication fails.
var ErrBadCredentials = errors.New("invalid username or password")

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	return &user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	return &user, nil
}

// CreateUser registers a new account with a bcrypt password hash.
func (s *UserStore) CreateUser(ctx context.Context, username, password, name, address, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	var exists int64
	s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&exists)
	if exists > 0 {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := domain.User{
		ID:        common.UUIDint64(),
		Username:  username,
		Password:  string(hash),
		Name:      name,
		Role:      role,
		Address:   address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return &user, nil
}

// Authenticate verifies the password and stamps last login on success.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	now := time.Now()
	_ = s.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		Update("last_login", now).Error
	user.LastLogin = now
	return user, nil
}
