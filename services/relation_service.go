package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"dine-server/models"
	"dine-server/store"
	"dine-server/utils/errors"
)

// RelationService performs every mutation that spans more than one aggregate
// or embedded collection: friend links, favorite mirrors, event fan-out,
// messages, and friend invites. The store offers no cross-document
// transactions, so each operation is a fixed-order sequence of independent
// whole-document saves. A failure after the first committed save is reported
// as a PartialWriteError and is never rolled back.
type RelationService struct {
	store store.Store
	cache *redis.Client
}

func NewRelationService(st store.Store, cache *redis.Client) *RelationService {
	return &RelationService{store: st, cache: cache}
}

// Friends
// =======================================================================

// AddFriend links two users symmetrically: the friend id lands in userID's
// list first, then the reverse entry. Adds are idempotent; an id already in
// the list is not pushed again.
func (s *RelationService) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return errors.ErrInvalidInput
	}
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	friend, err := s.store.UserByID(ctx, friendID)
	if err != nil {
		return notFound(err)
	}

	added := false
	if appendMissing(&user.Friends, friendID) {
		if err := s.saveUser(ctx, user); err != nil {
			return errors.Wrap(err, "DB_ERROR", "Failed to add friend", 500)
		}
		added = true
	}
	if appendMissing(&friend.Friends, userID) {
		if err := s.saveUser(ctx, friend); err != nil {
			if added {
				return s.partial("friend.add", err, userID)
			}
			return errors.Wrap(err, "DB_ERROR", "Failed to add friend", 500)
		}
	}
	log.Info().Str("user_id", userID).Str("friend_id", friendID).Msg("friend link created")
	return nil
}

// RemoveFriend unlinks both directions. Removing a non-member is a no-op
// success.
func (s *RelationService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	friend, err := s.store.UserByID(ctx, friendID)
	if err != nil {
		return notFound(err)
	}

	removed := false
	if removeAll(&user.Friends, friendID) {
		if err := s.saveUser(ctx, user); err != nil {
			return errors.Wrap(err, "DB_ERROR", "Failed to remove friend", 500)
		}
		removed = true
	}
	if removeAll(&friend.Friends, userID) {
		if err := s.saveUser(ctx, friend); err != nil {
			if removed {
				return s.partial("friend.remove", err, userID)
			}
			return errors.Wrap(err, "DB_ERROR", "Failed to remove friend", 500)
		}
	}
	return nil
}

// Favorites
// =======================================================================

// AddFavorite mirrors the restaurant id into the user's favorites and the
// user id into the restaurant's userLikes, in that order.
func (s *RelationService) AddFavorite(ctx context.Context, userID, restaurantID string) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	restaurant, err := s.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return notFound(err)
	}

	added := false
	if appendMissing(&user.Favorites, restaurantID) {
		if err := s.saveUser(ctx, user); err != nil {
			return errors.Wrap(err, "DB_ERROR", "Failed to add favorite", 500)
		}
		added = true
	}
	if appendMissing(&restaurant.UserLikes, userID) {
		if err := s.store.SaveRestaurant(ctx, restaurant); err != nil {
			if added {
				return s.partial("favorite.add", err, userID)
			}
			return errors.Wrap(err, "DB_ERROR", "Failed to add favorite", 500)
		}
	}
	return nil
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, restaurantID string) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	restaurant, err := s.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return notFound(err)
	}

	removed := false
	if removeAll(&user.Favorites, restaurantID) {
		if err := s.saveUser(ctx, user); err != nil {
			return errors.Wrap(err, "DB_ERROR", "Failed to remove favorite", 500)
		}
		removed = true
	}
	if removeAll(&restaurant.UserLikes, userID) {
		if err := s.store.SaveRestaurant(ctx, restaurant); err != nil {
			if removed {
				return s.partial("favorite.remove", err, userID)
			}
			return errors.Wrap(err, "DB_ERROR", "Failed to remove favorite", 500)
		}
	}
	return nil
}

// Events
// =======================================================================

// CreateEvent fans an identical event copy out to every resolvable
// participant. Participant ids that do not resolve to a user are skipped;
// the fan-out is best-effort, not all-or-nothing. Returns the creator's
// resulting record.
func (s *RelationService) CreateEvent(ctx context.Context, creatorID, restaurantID string, date time.Time, participantIDs []string) (*models.User, error) {
	event := models.Event{
		EventID:      uuid.NewString(),
		Restaurant:   restaurantID,
		Participants: participantIDs,
		Date:         date,
		CreatedBy:    creatorID,
	}

	participants, err := s.store.UsersByIDs(ctx, participantIDs)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to resolve participants", 500)
	}

	var committed []string
	for i := range participants {
		p := &participants[i]
		p.Events = append(p.Events, event)
		if err := s.saveUser(ctx, p); err != nil {
			if len(committed) > 0 {
				return nil, s.partial("event.create", err, committed...)
			}
			return nil, errors.Wrap(err, "DB_ERROR", "Failed to create event", 500)
		}
		committed = append(committed, p.ID)
	}

	log.Info().Str("event_id", event.EventID).Int("participants", len(committed)).Msg("event created")

	creator, err := s.store.UserByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err)
	}
	return creator, nil
}

// EditEvent rewrites every copy of the event. Phase one strips the copy from
// holders dropped off the participant list; phase two overwrites or appends
// for every current participant. Cost is proportional to the holder set plus
// the new participant list.
func (s *RelationService) EditEvent(ctx context.Context, eventID, restaurantID string, date time.Time, participantIDs []string) error {
	holders, err := s.store.EventHolders(ctx, eventID)
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "Failed to resolve event holders", 500)
	}
	if len(holders) == 0 {
		return errors.ErrNotFound
	}

	// createdBy is not editable; carry it over from an existing copy
	event := models.Event{
		EventID:      eventID,
		Restaurant:   restaurantID,
		Participants: participantIDs,
		Date:         date,
	}
	for _, ev := range holders[0].Events {
		if ev.EventID == eventID {
			event.CreatedBy = ev.CreatedBy
			break
		}
	}

	var committed []string
	for i := range holders {
		h := &holders[i]
		if containsID(participantIDs, h.ID) {
			continue
		}
		removeEvent(&h.Events, eventID)
		if err := s.saveUser(ctx, h); err != nil {
			return s.editFailure(err, committed)
		}
		committed = append(committed, h.ID)
	}

	participants, err := s.store.UsersByIDs(ctx, participantIDs)
	if err != nil {
		return s.editFailure(err, committed)
	}
	for i := range participants {
		p := &participants[i]
		if !replaceEvent(&p.Events, event) {
			p.Events = append(p.Events, event)
		}
		if err := s.saveUser(ctx, p); err != nil {
			return s.editFailure(err, committed)
		}
		committed = append(committed, p.ID)
	}
	return nil
}

func (s *RelationService) editFailure(err error, committed []string) error {
	if len(committed) > 0 {
		return s.partial("event.edit", err, committed...)
	}
	return errors.Wrap(err, "DB_ERROR", "Failed to edit event", 500)
}

// DeleteEvent strips the copy from every holder; there is no single owning
// deletion. Deleting an event nobody holds is a no-op success.
func (s *RelationService) DeleteEvent(ctx context.Context, eventID string) error {
	holders, err := s.store.EventHolders(ctx, eventID)
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "Failed to resolve event holders", 500)
	}

	var committed []string
	for i := range holders {
		h := &holders[i]
		removeEvent(&h.Events, eventID)
		if err := s.saveUser(ctx, h); err != nil {
			if len(committed) > 0 {
				return s.partial("event.delete", err, committed...)
			}
			return errors.Wrap(err, "DB_ERROR", "Failed to delete event", 500)
		}
		committed = append(committed, h.ID)
	}
	return nil
}

// Messages
// =======================================================================

// SendMessage appends to the recipient's embedded list only; the sender
// holds no copy.
func (s *RelationService) SendMessage(ctx context.Context, senderID, recipientID, body string) (*models.Message, error) {
	recipient, err := s.store.UserByID(ctx, recipientID)
	if err != nil {
		return nil, notFound(err)
	}

	message := models.Message{
		ID:        uuid.NewString(),
		Sender:    senderID,
		Recipient: recipientID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	recipient.Messages = append(recipient.Messages, message)
	if err := s.saveUser(ctx, recipient); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to send message", 500)
	}
	return &message, nil
}

func (s *RelationService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}

	kept := user.Messages[:0]
	for _, msg := range user.Messages {
		if msg.ID != messageID {
			kept = append(kept, msg)
		}
	}
	if len(kept) == len(user.Messages) {
		return nil
	}
	user.Messages = kept
	if err := s.saveUser(ctx, user); err != nil {
		return errors.Wrap(err, "DB_ERROR", "Failed to delete message", 500)
	}
	return nil
}

// Friend invites
// =======================================================================

func (s *RelationService) CreateInvite(ctx context.Context, recipientID, senderID, body string) (*models.FriendInvite, error) {
	recipient, err := s.store.UserByID(ctx, recipientID)
	if err != nil {
		return nil, notFound(err)
	}

	invite := models.FriendInvite{
		ID:        uuid.NewString(),
		Sender:    senderID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	recipient.FriendInvites = append(recipient.FriendInvites, invite)
	if err := s.saveUser(ctx, recipient); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to create friend invite", 500)
	}
	return &invite, nil
}

func (s *RelationService) DeleteInvite(ctx context.Context, recipientID, inviteID string) error {
	recipient, err := s.store.UserByID(ctx, recipientID)
	if err != nil {
		return notFound(err)
	}

	kept := recipient.FriendInvites[:0]
	for _, inv := range recipient.FriendInvites {
		if inv.ID != inviteID {
			kept = append(kept, inv)
		}
	}
	if len(kept) == len(recipient.FriendInvites) {
		return nil
	}
	recipient.FriendInvites = kept
	if err := s.saveUser(ctx, recipient); err != nil {
		return errors.Wrap(err, "DB_ERROR", "Failed to delete friend invite", 500)
	}
	return nil
}

// User deletion
// =======================================================================

// DeleteUser removes the user document and scrubs the id out of every
// mirror that references it: friends' back-links, restaurants' userLikes,
// and the participant lists of event copies held by others. Same contract
// as the other multi-write operations — fixed order, no rollback, a failure
// after the first committed write surfaces as a PartialWriteError.
func (s *RelationService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}

	var committed []string
	fail := func(err error) error {
		if len(committed) > 0 {
			return s.partial("user.delete", err, committed...)
		}
		return errors.Wrap(err, "DB_ERROR", "Failed to delete user", 500)
	}

	// Friend links are symmetric, so user.Friends names every holder of a
	// back-link.
	friends, err := s.store.UsersByIDs(ctx, user.Friends)
	if err != nil {
		return fail(err)
	}
	for i := range friends {
		friend := &friends[i]
		if removeAll(&friend.Friends, userID) {
			if err := s.saveUser(ctx, friend); err != nil {
				return fail(err)
			}
			committed = append(committed, friend.ID)
		}
	}

	for _, restaurantID := range user.Favorites {
		restaurant, err := s.store.RestaurantByID(ctx, restaurantID)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			return fail(err)
		}
		if removeAll(&restaurant.UserLikes, userID) {
			if err := s.store.SaveRestaurant(ctx, restaurant); err != nil {
				return fail(err)
			}
			committed = append(committed, restaurant.ID)
		}
	}

	// Other holders keep their event copies but drop this participant.
	for _, event := range user.Events {
		holders, err := s.store.EventHolders(ctx, event.EventID)
		if err != nil {
			return fail(err)
		}
		for i := range holders {
			holder := &holders[i]
			if holder.ID == userID {
				continue
			}
			changed := false
			for j := range holder.Events {
				if holder.Events[j].EventID == event.EventID && removeAll(&holder.Events[j].Participants, userID) {
					changed = true
				}
			}
			if !changed {
				continue
			}
			if err := s.saveUser(ctx, holder); err != nil {
				return fail(err)
			}
			if !containsID(committed, holder.ID) {
				committed = append(committed, holder.ID)
			}
		}
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fail(err)
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, "user:"+userID).Err(); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate user cache")
		}
	}
	log.Info().Str("user_id", userID).Msg("user deleted")
	return nil
}

// Helpers
// =======================================================================

// saveUser persists the document and drops the cached copy so readers do not
// observe stale relationship state.
func (s *RelationService) saveUser(ctx context.Context, user *models.User) error {
	if err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, "user:"+user.ID).Err(); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to invalidate user cache")
		}
	}
	return nil
}

func (s *RelationService) partial(op string, err error, committed ...string) error {
	perr := &errors.PartialWriteError{Op: op, Committed: committed, Err: err}
	log.Error().Err(err).Str("op", op).Strs("committed", committed).Msg("partial write")
	return perr
}

func notFound(err error) error {
	if err == store.ErrNotFound {
		return errors.ErrNotFound
	}
	return errors.Wrap(err, "DB_ERROR", "Store lookup failed", 500)
}

// appendMissing adds id to the list unless already present, reporting
// whether the list changed. The lists behave as sets.
func appendMissing(list *[]string, id string) bool {
	if containsID(*list, id) {
		return false
	}
	*list = append(*list, id)
	return true
}

func removeAll(list *[]string, id string) bool {
	kept := (*list)[:0]
	for _, v := range *list {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(*list) {
		return false
	}
	*list = kept
	return true
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func removeEvent(events *[]models.Event, eventID string) bool {
	kept := (*events)[:0]
	for _, ev := range *events {
		if ev.EventID != eventID {
			kept = append(kept, ev)
		}
	}
	if len(kept) == len(*events) {
		return false
	}
	*events = kept
	return true
}

func replaceEvent(events *[]models.Event, event models.Event) bool {
	for i, ev := range *events {
		if ev.EventID == event.EventID {
			(*events)[i] = event
			return true
		}
	}
	return false
}
