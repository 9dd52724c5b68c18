package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/classmatch/api/apperrors"
	config "github.com/classmatch/api/configs"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/notifications"
	"github.com/classmatch/api/store"
)

// maxWriteAttempts bounds the optimistic-retry loop on class mutations.
const maxWriteAttempts = 3

var (
	ErrClassFull      = apperrors.New(apperrors.Conflict, "class is full")
	ErrAlreadyJoined  = apperrors.New(apperrors.Conflict, "user is already enrolled in this class")
	ErrNotEnrolled    = apperrors.New(apperrors.Conflict, "user is not enrolled in this class")
	ErrClassNotActive = apperrors.New(apperrors.Conflict, "class is not active")

	errConcurrentUpdate = apperrors.New(apperrors.Conflict, "class was modified concurrently, please retry")
)

// Roster owns the class aggregate. Every mutation of members, capacity or
// status goes through here as a read-modify-write guarded by the document
// version: load the class, mutate a copy, attempt a conditional write,
// retry on version mismatch up to maxWriteAttempts.
type Roster struct {
	store    store.Store
	notifier notifications.Notifier
	cfg      *config.Config
}

func NewRoster(st store.Store, notifier notifications.Notifier, cfg *config.Config) *Roster {
	return &Roster{store: st, notifier: notifier, cfg: cfg}
}

// ClassPatch is a partial update for UpdateClass; nil fields are left
// untouched.
type ClassPatch struct {
	Day         *string
	Time        *string
	ClassTypeID *string
	TotalSpots  *int
}

func (r *Roster) CreateClass(ctx context.Context, classTypeID, day, slotTime string, initialMembers []models.Member, totalSpots int) (*models.Class, error) {
	if totalSpots == 0 {
		totalSpots = r.cfg.DefaultClassSpots
	}
	if totalSpots < 0 {
		return nil, apperrors.New(apperrors.Validation, "totalSpots must not be negative")
	}
	if len(initialMembers) > totalSpots {
		return nil, apperrors.Newf(apperrors.Validation,
			"%d initial members exceed %d total spots", len(initialMembers), totalSpots)
	}

	if _, err := getClassType(ctx, r.store, classTypeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seen := make(map[string]bool, len(initialMembers))
	members := make([]models.Member, 0, len(initialMembers))
	for _, m := range initialMembers {
		if seen[m.UserID] {
			return nil, apperrors.Newf(apperrors.Validation, "duplicate initial member %s", m.UserID)
		}
		seen[m.UserID] = true
		if m.JoinedAt.IsZero() {
			m.JoinedAt = now
		}
		members = append(members, m)
	}

	class := &models.Class{
		ID:          uuid.NewString(),
		ClassTypeID: classTypeID,
		Day:         day,
		Time:        slotTime,
		Members:     members,
		TotalSpots:  totalSpots,
		Status:      models.ClassStatusActive,
		CreatedAt:   now,
	}
	class.RecomputeSpots()

	if err := r.store.Create(ctx, models.CollectionClasses, class.ID, class); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to create class", err)
	}
	return class, nil
}

func (r *Roster) GetClass(ctx context.Context, classID string) (*models.Class, error) {
	var class models.Class
	if _, err := r.store.Get(ctx, models.CollectionClasses, classID, &class); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "class not found")
		}
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class", err)
	}
	return &class, nil
}

func (r *Roster) ListClasses(ctx context.Context, classTypeID string) ([]models.Class, error) {
	filter := store.Filter{}
	if classTypeID != "" {
		filter["classTypeId"] = classTypeID
	}
	var classes []models.Class
	if err := r.store.List(ctx, models.CollectionClasses, filter, &classes); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to list classes", err)
	}
	return classes, nil
}

func (r *Roster) JoinClass(ctx context.Context, classID, userID, name string) (*models.Class, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		var class models.Class
		version, err := r.store.Get(ctx, models.CollectionClasses, classID, &class)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.NotFound, "class not found")
			}
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class", err)
		}
		if class.Status != models.ClassStatusActive {
			return nil, ErrClassNotActive
		}
		if class.IsFull() {
			return nil, ErrClassFull
		}
		if class.HasMember(userID) {
			return nil, ErrAlreadyJoined
		}

		class.Members = append(class.Members, models.Member{
			UserID:   userID,
			Name:     name,
			JoinedAt: time.Now().UTC(),
		})
		class.RecomputeSpots()

		err = r.store.Update(ctx, models.CollectionClasses, classID, &class, version)
		if errors.Is(err, store.ErrVersionMismatch) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to save class", err)
		}

		r.notifyJoined(ctx, &class, userID, name)
		return &class, nil
	}
	return nil, errConcurrentUpdate
}

func (r *Roster) LeaveClass(ctx context.Context, classID, userID string) (*models.Class, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		var class models.Class
		version, err := r.store.Get(ctx, models.CollectionClasses, classID, &class)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.NotFound, "class not found")
			}
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class", err)
		}
		if class.Status != models.ClassStatusActive {
			return nil, ErrClassNotActive
		}

		kept := class.Members[:0:0]
		for _, m := range class.Members {
			if m.UserID != userID {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(class.Members) {
			return nil, ErrNotEnrolled
		}
		class.Members = kept
		class.RecomputeSpots()

		err = r.store.Update(ctx, models.CollectionClasses, classID, &class, version)
		if errors.Is(err, store.ErrVersionMismatch) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to save class", err)
		}
		return &class, nil
	}
	return nil, errConcurrentUpdate
}

func (r *Roster) UpdateClass(ctx context.Context, classID string, patch ClassPatch) (*models.Class, error) {
	if patch.ClassTypeID != nil {
		if _, err := getClassType(ctx, r.store, *patch.ClassTypeID); err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		var class models.Class
		version, err := r.store.Get(ctx, models.CollectionClasses, classID, &class)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.NotFound, "class not found")
			}
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class", err)
		}
		if class.Status != models.ClassStatusActive {
			return nil, ErrClassNotActive
		}

		if patch.Day != nil {
			class.Day = *patch.Day
		}
		if patch.Time != nil {
			class.Time = *patch.Time
		}
		if patch.ClassTypeID != nil {
			class.ClassTypeID = *patch.ClassTypeID
		}
		if patch.TotalSpots != nil {
			if *patch.TotalSpots < 1 {
				return nil, apperrors.New(apperrors.Validation, "totalSpots must be at least 1")
			}
			if *patch.TotalSpots < len(class.Members) {
				return nil, apperrors.Newf(apperrors.Conflict,
					"cannot reduce totalSpots to %d with %d enrolled members", *patch.TotalSpots, len(class.Members))
			}
			class.TotalSpots = *patch.TotalSpots
		}
		class.RecomputeSpots()

		err = r.store.Update(ctx, models.CollectionClasses, classID, &class, version)
		if errors.Is(err, store.ErrVersionMismatch) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to save class", err)
		}
		return &class, nil
	}
	return nil, errConcurrentUpdate
}

// CancelClass is not idempotent: cancelling twice overwrites cancelledAt
// and the reason.
func (r *Roster) CancelClass(ctx context.Context, classID, reason string) (*models.Class, error) {
	return r.transition(ctx, classID, func(class *models.Class) {
		now := time.Now().UTC()
		class.Status = models.ClassStatusCancelled
		class.CancelledAt = &now
		class.CancelReason = reason
	})
}

func (r *Roster) ReactivateClass(ctx context.Context, classID string) (*models.Class, error) {
	return r.transition(ctx, classID, func(class *models.Class) {
		class.Status = models.ClassStatusActive
		class.CancelledAt = nil
		class.CancelReason = ""
	})
}

func (r *Roster) transition(ctx context.Context, classID string, apply func(*models.Class)) (*models.Class, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		var class models.Class
		version, err := r.store.Get(ctx, models.CollectionClasses, classID, &class)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.NotFound, "class not found")
			}
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class", err)
		}

		apply(&class)
		class.RecomputeSpots()

		err = r.store.Update(ctx, models.CollectionClasses, classID, &class, version)
		if errors.Is(err, store.ErrVersionMismatch) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to save class", err)
		}
		return &class, nil
	}
	return nil, errConcurrentUpdate
}

func (r *Roster) DeleteClass(ctx context.Context, classID string) error {
	if err := r.store.Delete(ctx, models.CollectionClasses, classID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "class not found")
		}
		return apperrors.Wrap(apperrors.Dependency, "failed to delete class", err)
	}
	return nil
}

// notifyJoined is best effort: failures are logged and never affect the
// committed enrollment.
func (r *Roster) notifyJoined(ctx context.Context, class *models.Class, userID, name string) {
	data := map[string]any{
		"classType": classTypeName(ctx, r.store, class.ClassTypeID),
		"day":       class.Day,
		"time":      class.Time,
		"spotsLeft": class.SpotsLeft,
		"fillRate":  fmt.Sprintf("%.0f%%", class.FillRate()),
	}

	if user, err := getUser(ctx, r.store, userID); err == nil {
		to := notifications.Recipient{Name: user.FullName, Email: user.Email}
		if err := r.notifier.Notify(ctx, to, notifications.TemplateClassJoined, data); err != nil {
			log.Printf("🔥 Failed to send join confirmation to %s: %v", user.Email, err)
		}
	} else {
		log.Printf("Skipping join confirmation, no user record for %s", userID)
	}

	if r.cfg.OperatorEmail != "" {
		to := notifications.Recipient{Name: "Operator", Email: r.cfg.OperatorEmail}
		data["memberName"] = name
		if err := r.notifier.Notify(ctx, to, notifications.TemplateClassJoined, data); err != nil {
			log.Printf("🔥 Failed to send operator notification: %v", err)
		}
	}
}
