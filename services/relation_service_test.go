package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dine-server/models"
	"dine-server/store"
	apierrors "dine-server/utils/errors"
)

func seedUser(t *testing.T, st store.UserStore, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Friends:   []string{},
		Favorites: []string{},
	}
	require.NoError(t, st.InsertUser(context.Background(), user))
	return user
}

func seedRestaurant(t *testing.T, st store.RestaurantStore, name string) *models.Restaurant {
	t.Helper()
	restaurant := &models.Restaurant{Name: name, UserLikes: []string{}}
	require.NoError(t, st.InsertRestaurant(context.Background(), restaurant))
	return restaurant
}

func TestAddFriendSymmetry(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	require.NoError(t, svc.AddFriend(ctx, alice.ID, bob.ID))

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Contains(t, gotAlice.Friends, bob.ID)
	assert.Contains(t, gotBob.Friends, alice.ID)
}

func TestAddFriendIdempotent(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	require.NoError(t, svc.AddFriend(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.AddFriend(ctx, alice.ID, bob.ID))

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, gotAlice.Friends, "repeated adds must not produce duplicates")
}

func TestAddFriendSelf(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)

	alice := seedUser(t, st, "alice")
	err := svc.AddFriend(context.Background(), alice.ID, alice.ID)
	assert.Equal(t, apierrors.ErrInvalidInput, err)
}

func TestRemoveFriendBothDirections(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	require.NoError(t, svc.AddFriend(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.RemoveFriend(ctx, alice.ID, bob.ID))

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotAlice.Friends)
	assert.Empty(t, gotBob.Friends)
}

func TestRemoveFriendNonMemberIsNoop(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	assert.NoError(t, svc.RemoveFriend(context.Background(), alice.ID, bob.ID))
}

func TestAddFriendUnknownUser(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)

	alice := seedUser(t, st, "alice")
	err := svc.AddFriend(context.Background(), alice.ID, "no-such-user")
	assert.Equal(t, apierrors.ErrNotFound, err)
}

// failingUserSaves wraps the memory store and fails SaveUser after a fixed
// number of successful saves, to exercise the no-rollback contract.
type failingUserSaves struct {
	store.Store
	allowed int
	saves   int
}

func (f *failingUserSaves) SaveUser(ctx context.Context, user *models.User) error {
	f.saves++
	if f.saves > f.allowed {
		return errors.New("store unavailable")
	}
	return f.Store.SaveUser(ctx, user)
}

func TestAddFriendPartialFailureLeavesFirstWrite(t *testing.T) {
	mem := store.NewMemory()
	flaky := &failingUserSaves{Store: mem, allowed: 1}
	svc := NewRelationService(flaky, nil)
	ctx := context.Background()

	alice := seedUser(t, mem, "alice")
	bob := seedUser(t, mem, "bob")

	err := svc.AddFriend(ctx, alice.ID, bob.ID)
	var perr *apierrors.PartialWriteError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "friend.add", perr.Op)
	assert.Equal(t, []string{alice.ID}, perr.Committed)

	// No rollback: the first write stays, the relationship is asymmetric
	gotAlice, lookupErr := mem.UserByID(ctx, alice.ID)
	require.NoError(t, lookupErr)
	gotBob, lookupErr := mem.UserByID(ctx, bob.ID)
	require.NoError(t, lookupErr)
	assert.Contains(t, gotAlice.Friends, bob.ID)
	assert.NotContains(t, gotBob.Friends, alice.ID)
}

func TestFavoriteMirror(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	pizza := seedRestaurant(t, st, "Pizza Place")

	require.NoError(t, svc.AddFavorite(ctx, alice.ID, pizza.ID))

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	gotPizza, err := st.RestaurantByID(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{pizza.ID}, gotAlice.Favorites)
	assert.Equal(t, []string{alice.ID}, gotPizza.UserLikes)

	require.NoError(t, svc.RemoveFavorite(ctx, alice.ID, pizza.ID))

	gotAlice, err = st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	gotPizza, err = st.RestaurantByID(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Empty(t, gotAlice.Favorites)
	assert.Empty(t, gotPizza.UserLikes)
}

func TestCreateEventFansOutIdenticalCopies(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	pizza := seedRestaurant(t, st, "Pizza Place")
	date := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	creator, err := svc.CreateEvent(ctx, alice.ID, pizza.ID, date, []string{alice.ID, bob.ID, "ghost"})
	require.NoError(t, err)
	require.Len(t, creator.Events, 1)

	event := creator.Events[0]
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, pizza.ID, event.Restaurant)
	assert.Equal(t, alice.ID, event.CreatedBy)
	assert.True(t, event.Date.Equal(date))

	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, gotBob.Events, 1)
	assert.Equal(t, event, gotBob.Events[0], "every participant holds an identical copy")

	// The unresolvable participant id was skipped without error
	holders, err := st.EventHolders(ctx, event.EventID)
	require.NoError(t, err)
	assert.Len(t, holders, 2)
}

func TestEditEventNarrowsParticipants(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	pizza := seedRestaurant(t, st, "Pizza Place")
	tacos := seedRestaurant(t, st, "Taco Spot")

	creator, err := svc.CreateEvent(ctx, alice.ID, pizza.ID, time.Now(), []string{alice.ID, bob.ID})
	require.NoError(t, err)
	eventID := creator.Events[0].EventID

	newDate := time.Date(2025, 7, 4, 20, 0, 0, 0, time.UTC)
	require.NoError(t, svc.EditEvent(ctx, eventID, tacos.ID, newDate, []string{alice.ID}))

	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBob.Events, "bob was dropped from the participant list")

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, gotAlice.Events, 1)
	assert.Equal(t, tacos.ID, gotAlice.Events[0].Restaurant)
	assert.True(t, gotAlice.Events[0].Date.Equal(newDate))
	assert.Equal(t, alice.ID, gotAlice.Events[0].CreatedBy, "createdBy survives edits")
	assert.Equal(t, []string{alice.ID}, gotAlice.Events[0].Participants)
}

func TestEditEventAddsNewParticipant(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	pizza := seedRestaurant(t, st, "Pizza Place")

	creator, err := svc.CreateEvent(ctx, alice.ID, pizza.ID, time.Now(), []string{alice.ID})
	require.NoError(t, err)
	eventID := creator.Events[0].EventID

	require.NoError(t, svc.EditEvent(ctx, eventID, pizza.ID, time.Now(), []string{alice.ID, bob.ID}))

	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, gotBob.Events, 1)
	assert.Equal(t, eventID, gotBob.Events[0].EventID)

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, gotAlice.Events, 1, "existing copy was overwritten, not duplicated")
}

func TestEditEventUnknown(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)

	err := svc.EditEvent(context.Background(), "no-such-event", "r1", time.Now(), []string{"u1"})
	assert.Equal(t, apierrors.ErrNotFound, err)
}

func TestDeleteEventStripsAllCopies(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	pizza := seedRestaurant(t, st, "Pizza Place")

	creator, err := svc.CreateEvent(ctx, alice.ID, pizza.ID, time.Now(), []string{alice.ID, bob.ID})
	require.NoError(t, err)
	eventID := creator.Events[0].EventID

	require.NoError(t, svc.DeleteEvent(ctx, eventID))

	holders, err := st.EventHolders(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, holders)
}

func TestSendMessageStoredOnRecipientOnly(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	message, err := svc.SendMessage(ctx, alice.ID, bob.ID, "dinner friday?")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, message.Sender)
	assert.Equal(t, bob.ID, message.Recipient)

	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, gotBob.Messages, 1)
	assert.Equal(t, "dinner friday?", gotBob.Messages[0].Body)

	gotAlice, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, gotAlice.Messages, "sender keeps no copy")
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)

	_, err := svc.SendMessage(context.Background(), "whoever", "no-such-user", "hi")
	assert.Equal(t, apierrors.ErrNotFound, err)
}

func TestDeleteMessage(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	message, err := svc.SendMessage(ctx, alice.ID, bob.ID, "dinner friday?")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMessage(ctx, bob.ID, message.ID))
	require.NoError(t, svc.DeleteMessage(ctx, bob.ID, message.ID), "deleting twice is a no-op")

	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBob.Messages)
}

func TestFriendInviteLifecycle(t *testing.T) {
	st := store.NewMemory()
	svc := NewRelationService(st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	invite, err := svc.CreateInvite(ctx, bob.ID, alice.ID, "let's be friends")
	require.NoError(t, err)

	gotBob, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, gotBob.FriendInvites, 1)
	assert.Equal(t, alice.ID, gotBob.FriendInvites[0].Sender)

	require.NoError(t, svc.DeleteInvite(ctx, bob.ID, invite.ID))

	gotBob, err = st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBob.FriendInvites)
}

func TestAddFriendSkippedFirstWriteIsNotReportedCommitted(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	alice := seedUser(t, mem, "alice")
	bob := seedUser(t, mem, "bob")

	// Leftover one-sided link, the state a prior partial failure leaves
	alice.Friends = append(alice.Friends, bob.ID)
	require.NoError(t, mem.SaveUser(ctx, alice))

	flaky := &failingUserSaves{Store: mem, allowed: 0}
	svc := NewRelationService(flaky, nil)

	err := svc.AddFriend(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	// Alice's side was skipped, so nothing committed and no partial write
	var perr *apierrors.PartialWriteError
	assert.False(t, errors.As(err, &perr))

	gotBob, lookupErr := mem.UserByID(ctx, bob.ID)
	require.NoError(t, lookupErr)
	assert.NotContains(t, gotBob.Friends, alice.ID)
}

func TestAddFavoriteSkippedFirstWriteIsNotReportedCommitted(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	alice := seedUser(t, mem, "alice")
	pizza := seedRestaurant(t, mem, "Pizza Place")

	alice.Favorites = append(alice.Favorites, pizza.ID)
	require.NoError(t, mem.SaveUser(ctx, alice))

	flaky := &failingRestaurantSaves{Store: mem}
	svc := NewRelationService(flaky, nil)

	err := svc.AddFavorite(ctx, alice.ID, pizza.ID)
	require.Error(t, err)

	var perr *apierrors.PartialWriteError
	assert.False(t, errors.As(err, &perr))

	gotPizza, lookupErr := mem.RestaurantByID(ctx, pizza.ID)
	require.NoError(t, lookupErr)
	assert.NotContains(t, gotPizza.UserLikes, alice.ID)
}

type failingRestaurantSaves struct {
	store.Store
}

func (f *failingRestaurantSaves) SaveRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	return errors.New("store unavailable")
}

func TestDeleteUserScrubsMirrors(t *testing.T) {
	mem := store.NewMemory()
	svc := NewRelationService(mem, nil)
	ctx := context.Background()

	alice := seedUser(t, mem, "alice")
	bob := seedUser(t, mem, "bob")
	pizza := seedRestaurant(t, mem, "Pizza Place")

	require.NoError(t, svc.AddFriend(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.AddFavorite(ctx, alice.ID, pizza.ID))
	_, err := svc.CreateEvent(ctx, alice.ID, pizza.ID, time.Now().Add(48*time.Hour), []string{alice.ID, bob.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, alice.ID))

	_, err = mem.UserByID(ctx, alice.ID)
	assert.Equal(t, store.ErrNotFound, err)

	gotBob, err := mem.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotContains(t, gotBob.Friends, alice.ID)
	require.Len(t, gotBob.Events, 1)
	assert.NotContains(t, gotBob.Events[0].Participants, alice.ID)
	assert.Contains(t, gotBob.Events[0].Participants, bob.ID)

	gotPizza, err := mem.RestaurantByID(ctx, pizza.ID)
	require.NoError(t, err)
	assert.NotContains(t, gotPizza.UserLikes, alice.ID)
}

func TestDeleteUserUnknown(t *testing.T) {
	mem := store.NewMemory()
	svc := NewRelationService(mem, nil)

	err := svc.DeleteUser(context.Background(), "no-such-user")
	assert.Equal(t, apierrors.ErrNotFound, err)
}
