package services

import (
	"context"
	"errors"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/store"
)

func getUser(ctx context.Context, st store.Store, userID string) (*models.User, error) {
	var user models.User
	if _, err := st.Get(ctx, models.CollectionUsers, userID, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to load user", err)
	}
	return &user, nil
}

func getClassType(ctx context.Context, st store.Store, classTypeID string) (*models.ClassType, error) {
	var ct models.ClassType
	if _, err := st.Get(ctx, models.CollectionClassTypes, classTypeID, &ct); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "class type not found")
		}
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class type", err)
	}
	return &ct, nil
}

// classTypeName is for notification copy only; falls back to the id when
// the lookup fails.
func classTypeName(ctx context.Context, st store.Store, classTypeID string) string {
	ct, err := getClassType(ctx, st, classTypeID)
	if err != nil {
		return classTypeID
	}
	return ct.Name
}
