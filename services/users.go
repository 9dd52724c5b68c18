package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/notifications"
	"github.com/classmatch/api/store"
)

type Users struct {
	store    store.Store
	notifier notifications.Notifier
}

func NewUsers(st store.Store, notifier notifications.Notifier) *Users {
	return &Users{store: st, notifier: notifier}
}

func (s *Users) Register(ctx context.Context, fullName, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing []models.User
	if err := s.store.List(ctx, models.CollectionUsers, store.Filter{"email": email}, &existing); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to check existing users", err)
	}
	if len(existing) > 0 {
		return nil, apperrors.New(apperrors.Conflict, "email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to hash password", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, models.CollectionUsers, user.ID, user); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to create user", err)
	}

	to := notifications.Recipient{Name: user.FullName, Email: user.Email}
	if err := s.notifier.Notify(ctx, to, notifications.TemplateWelcome, map[string]any{"fullName": user.FullName}); err != nil {
		log.Printf("🔥 Failed to send welcome email to %s: %v", user.Email, err)
	}
	return user, nil
}

func (s *Users) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return getUser(ctx, s.store, userID)
}
