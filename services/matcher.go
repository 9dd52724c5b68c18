package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/classmatch/api/apperrors"
	config "github.com/classmatch/api/configs"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/notifications"
	"github.com/classmatch/api/store"
)

// MinClassSize is the quorum for converting matched availability into a
// class: the submitter plus at least two other users. Fixed policy, not
// configuration.
const MinClassSize = 3

// Match pairs a matched user with the availability document that matched.
// A user who submitted twice appears once per matching document.
type Match struct {
	UserID         string `json:"userId"`
	AvailabilityID string `json:"availabilityId"`
}

// Matcher owns availability documents and the conversion of overlapping
// availability into classes.
type Matcher struct {
	store    store.Store
	notifier notifications.Notifier
	roster   *Roster
	cfg      *config.Config
}

func NewMatcher(st store.Store, notifier notifications.Notifier, roster *Roster, cfg *config.Config) *Matcher {
	return &Matcher{store: st, notifier: notifier, roster: roster, cfg: cfg}
}

// SubmitAvailability records a new Active availability document. Repeat
// submissions are allowed and each is matched independently; the archive
// sweep bounds the accumulation.
func (m *Matcher) SubmitAvailability(ctx context.Context, userID, classTypeID string, slots []models.SlotKey) (*models.AvailabilitySlot, error) {
	if len(slots) == 0 {
		return nil, apperrors.New(apperrors.Validation, "at least one availability slot is required")
	}
	ct, err := getClassType(ctx, m.store, classTypeID)
	if err != nil {
		return nil, err
	}
	if !ct.IsActive {
		return nil, apperrors.Newf(apperrors.Conflict, "class type %s is not active", ct.Name)
	}

	availability := &models.AvailabilitySlot{
		ID:          uuid.NewString(),
		UserID:      userID,
		ClassTypeID: classTypeID,
		Slots:       slots,
		Status:      models.AvailabilityStatusActive,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.store.Create(ctx, models.CollectionAvailability, availability.ID, availability); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to save availability", err)
	}
	return availability, nil
}

// FindMatches returns every other user with an Active availability
// document for the class type whose slot set contains slot. Order is
// store iteration order; callers must not depend on it.
func (m *Matcher) FindMatches(ctx context.Context, classTypeID string, slot models.SlotKey, excludeUserID string) ([]Match, error) {
	var docs []models.AvailabilitySlot
	filter := store.Filter{
		"classTypeId": classTypeID,
		"status":      models.AvailabilityStatusActive,
	}
	if err := m.store.List(ctx, models.CollectionAvailability, filter, &docs); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to query availability", err)
	}

	matches := make([]Match, 0)
	for _, doc := range docs {
		if doc.UserID == excludeUserID {
			continue
		}
		if doc.HasSlot(slot) {
			matches = append(matches, Match{UserID: doc.UserID, AvailabilityID: doc.ID})
		}
	}
	return matches, nil
}

// CheckForMatches walks the submitter's slots and forms a class from the
// first slot that reaches quorum. Forming a class archives the consumed
// availability documents of every user who became a member, so at most
// one class is formed per submission.
func (m *Matcher) CheckForMatches(ctx context.Context, userID, availabilityID, classTypeID string, slots []models.SlotKey) error {
	for _, slot := range slots {
		matches, err := m.FindMatches(ctx, classTypeID, slot, userID)
		if err != nil {
			return err
		}

		// Distinct users in match order; a user may have several
		// matching documents and all of them are consumed if the user
		// joins the class.
		userOrder := make([]string, 0, len(matches))
		docsByUser := make(map[string][]string)
		for _, match := range matches {
			if _, seen := docsByUser[match.UserID]; !seen {
				userOrder = append(userOrder, match.UserID)
			}
			docsByUser[match.UserID] = append(docsByUser[match.UserID], match.AvailabilityID)
		}

		if len(userOrder)+1 < MinClassSize {
			continue
		}

		totalSpots := m.cfg.DefaultClassSpots
		if len(userOrder) > totalSpots-1 {
			userOrder = userOrder[:totalSpots-1]
		}

		if err := m.formClass(ctx, userID, availabilityID, classTypeID, slot, userOrder, docsByUser, totalSpots); err != nil {
			return err
		}
		return nil
	}
	return nil
}

func (m *Matcher) formClass(ctx context.Context, submitterID, submitterAvailabilityID, classTypeID string, slot models.SlotKey, matchedUsers []string, docsByUser map[string][]string, totalSpots int) error {
	members := make([]models.Member, 0, len(matchedUsers)+1)
	members = append(members, models.Member{UserID: submitterID, Name: memberName(ctx, m.store, submitterID)})
	for _, uid := range matchedUsers {
		members = append(members, models.Member{UserID: uid, Name: memberName(ctx, m.store, uid)})
	}

	class, err := m.roster.CreateClass(ctx, classTypeID, slot.Day, slot.Time, members, totalSpots)
	if err != nil {
		return err
	}
	log.Printf("Formed class %s for %s on %s at %s with %d members",
		class.ID, classTypeID, slot.Day, slot.Time, len(class.Members))

	consumed := []string{submitterAvailabilityID}
	for _, uid := range matchedUsers {
		consumed = append(consumed, docsByUser[uid]...)
	}
	m.archiveConsumed(ctx, consumed)

	m.notifyMembers(ctx, class)
	return nil
}

// archiveConsumed flips consumed availability documents to Archived so a
// slot already converted into a class cannot match again. Failures are
// logged; the class itself is already committed.
func (m *Matcher) archiveConsumed(ctx context.Context, availabilityIDs []string) {
	for _, id := range availabilityIDs {
		var doc models.AvailabilitySlot
		version, err := m.store.Get(ctx, models.CollectionAvailability, id, &doc)
		if err != nil {
			log.Printf("🔥 Failed to load availability %s for archival: %v", id, err)
			continue
		}
		doc.Status = models.AvailabilityStatusArchived
		if err := m.store.Update(ctx, models.CollectionAvailability, id, &doc, version); err != nil {
			log.Printf("🔥 Failed to archive availability %s: %v", id, err)
		}
	}
}

// notifyMembers sends the match-found and join-confirmation messages to
// every member. A failure for one member never aborts the rest.
func (m *Matcher) notifyMembers(ctx context.Context, class *models.Class) {
	matchData := map[string]any{
		"classType": classTypeName(ctx, m.store, class.ClassTypeID),
		"day":       class.Day,
		"time":      class.Time,
	}
	joinedData := map[string]any{
		"classType": matchData["classType"],
		"day":       class.Day,
		"time":      class.Time,
		"spotsLeft": class.SpotsLeft,
		"fillRate":  fmt.Sprintf("%.0f%%", class.FillRate()),
	}

	for _, member := range class.Members {
		user, err := getUser(ctx, m.store, member.UserID)
		if err != nil {
			log.Printf("Skipping match notifications, no user record for %s", member.UserID)
			continue
		}
		to := notifications.Recipient{Name: user.FullName, Email: user.Email}
		if err := m.notifier.Notify(ctx, to, notifications.TemplateMatchFound, matchData); err != nil {
			log.Printf("🔥 Failed to send match notification to %s: %v", user.Email, err)
		}
		if err := m.notifier.Notify(ctx, to, notifications.TemplateClassJoined, joinedData); err != nil {
			log.Printf("🔥 Failed to send join confirmation to %s: %v", user.Email, err)
		}
	}
}

// GetUserAvailability lists a user's availability documents, Active first,
// newest first within each status.
func (m *Matcher) GetUserAvailability(ctx context.Context, userID string) ([]models.AvailabilitySlot, error) {
	var docs []models.AvailabilitySlot
	if err := m.store.List(ctx, models.CollectionAvailability, store.Filter{"userId": userID}, &docs); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to query availability", err)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Status != docs[j].Status {
			return docs[i].Status == models.AvailabilityStatusActive
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// ArchiveStale archives Active availability documents created before the
// cutoff. Returns how many documents were archived.
func (m *Matcher) ArchiveStale(ctx context.Context, cutoff time.Time) (int, error) {
	var docs []models.AvailabilitySlot
	filter := store.Filter{"status": models.AvailabilityStatusActive}
	if err := m.store.List(ctx, models.CollectionAvailability, filter, &docs); err != nil {
		return 0, apperrors.Wrap(apperrors.Dependency, "failed to query availability", err)
	}

	archived := 0
	for _, doc := range docs {
		if !doc.CreatedAt.Before(cutoff) {
			continue
		}
		doc.Status = models.AvailabilityStatusArchived
		err := m.store.Update(ctx, models.CollectionAvailability, doc.ID, &doc, store.AnyVersion)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return archived, apperrors.Wrap(apperrors.Dependency, "failed to archive availability", err)
		}
		if err == nil {
			archived++
		}
	}
	return archived, nil
}

func memberName(ctx context.Context, st store.Store, userID string) string {
	user, err := getUser(ctx, st, userID)
	if err != nil {
		return userID
	}
	return user.FullName
}
