package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/filter"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// steppingClock advances one minute per call so SentAt values are strictly increasing.
func steppingClock() func() time.Time {
	t := fixedToday
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newMessageRepo(t *testing.T) *repository.MessageRepository {
	t.Helper()
	return repository.NewMessageRepository(setupTestDB(t), repository.WithClock(steppingClock()))
}

func send(t *testing.T, repo *repository.MessageRepository, from, to uint64, content string) *db.Message {
	t.Helper()
	m, err := repo.Create(context.Background(), from, to, content)
	require.NoError(t, err)
	return m
}

func folder(t *testing.T, repo *repository.MessageRepository, owner uint64, f filter.Folder) []uint64 {
	t.Helper()
	page, err := repo.FindMessages(context.Background(), filter.MessageCriteria{
		OwnerID: owner, Folder: f, PageNumber: 1, PageSize: 50,
	})
	require.NoError(t, err)
	return messageIDs(page.Items)
}

func thread(t *testing.T, repo *repository.MessageRepository, user, other uint64) []uint64 {
	t.Helper()
	msgs, err := repo.FindThread(context.Background(), user, other)
	require.NoError(t, err)
	return messageIDs(msgs)
}

func TestCreate_StartsActiveAndUnread(t *testing.T) {
	repo := newMessageRepo(t)
	m := send(t, repo, 1, 2, "hi")

	assert.NotZero(t, m.ID)
	assert.False(t, m.IsRead)
	assert.Nil(t, m.ReadAt)
	assert.Equal(t, repository.Active, repository.StateOf(m))
	assert.True(t, m.SentAt.After(fixedToday))
}

func TestFindMessages_Folders(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)

	a := send(t, repo, 2, 1, "a") // to 1
	b := send(t, repo, 3, 1, "b") // to 1, read later
	c := send(t, repo, 1, 2, "c") // from 1
	d := send(t, repo, 1, 3, "d") // from 1, sender deletes
	e := send(t, repo, 2, 1, "e") // to 1, recipient deletes

	_, err := repo.MarkRead(ctx, b.ID, 1)
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, d.ID, 1)
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, e.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, []uint64{b.ID, a.ID}, folder(t, repo, 1, filter.Inbox))
	assert.Equal(t, []uint64{c.ID}, folder(t, repo, 1, filter.Outbox))
	assert.Equal(t, []uint64{a.ID}, folder(t, repo, 1, filter.Unread))
	assert.Equal(t, []uint64{a.ID}, folder(t, repo, 1, filter.ParseFolder("bogus")))

	// recipient 3 still sees d although its sender deleted it
	assert.Equal(t, []uint64{d.ID}, folder(t, repo, 3, filter.Inbox))
	// sender 2 still sees e although its recipient deleted it
	assert.Equal(t, []uint64{e.ID, a.ID}, folder(t, repo, 2, filter.Outbox))

	unread, err := repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestFindMessages_UnreadIgnoresReadRegardlessOfFlags(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)

	m := send(t, repo, 2, 1, "x")
	_, err := repo.MarkRead(ctx, m.ID, 1)
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, m.ID, 2)
	require.NoError(t, err)

	assert.Empty(t, folder(t, repo, 1, filter.Unread))
	assert.Equal(t, []uint64{m.ID}, folder(t, repo, 1, filter.Inbox))
}

func TestFindMessages_Paging(t *testing.T) {
	repo := newMessageRepo(t)
	var ids []uint64
	for i := 0; i < 5; i++ {
		ids = append(ids, send(t, repo, 2, 1, "m").ID)
	}

	page, err := repo.FindMessages(context.Background(), filter.MessageCriteria{
		OwnerID: 1, Folder: filter.Inbox, PageNumber: 2, PageSize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{ids[2], ids[1]}, messageIDs(page.Items))
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)

	_, err = repo.FindMessages(context.Background(), filter.MessageCriteria{OwnerID: 1, Folder: filter.Inbox, PageNumber: 1})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestFindThread_IsAsymmetric(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)

	m1 := send(t, repo, 1, 2, "hello")
	m2 := send(t, repo, 2, 1, "hey")
	m3 := send(t, repo, 1, 2, "how are you")
	send(t, repo, 1, 3, "unrelated")

	assert.Equal(t, []uint64{m3.ID, m2.ID, m1.ID}, thread(t, repo, 1, 2))
	assert.Equal(t, []uint64{m3.ID, m2.ID, m1.ID}, thread(t, repo, 2, 1))

	// user 1 deletes one sent and one received message
	_, err := repo.SoftDelete(ctx, m1.ID, 1)
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, m2.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, []uint64{m3.ID}, thread(t, repo, 1, 2))
	assert.Equal(t, []uint64{m3.ID, m2.ID, m1.ID}, thread(t, repo, 2, 1))

	// once user 2 deletes m1 too, it is purged
	state, err := repo.SoftDelete(ctx, m1.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, repository.Purged, state)
	assert.Equal(t, []uint64{m3.ID, m2.ID}, thread(t, repo, 2, 1))

	empty, err := repo.FindThread(ctx, 7, 8)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)
	m := send(t, repo, 1, 2, "hi")

	_, err := repo.MarkRead(ctx, m.ID, 1)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	_, err = repo.MarkRead(ctx, m.ID, 3)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	first, err := repo.MarkRead(ctx, m.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	assert.True(t, first.IsRead)

	second, err := repo.MarkRead(ctx, m.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt), "re-marking keeps the original read time")

	_, err = repo.MarkRead(ctx, 999, 2)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestMarkRead_AfterRecipientDeletedIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)
	m := send(t, repo, 1, 2, "hi")

	state, err := repo.SoftDelete(ctx, m.ID, 2)
	require.NoError(t, err)
	require.Equal(t, repository.PartiallyDeleted, state)

	_, err = repo.MarkRead(ctx, m.ID, 2)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	// the sender's copy is untouched and still unread
	got, err := repo.GetMessage(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.False(t, got.IsRead)
	assert.Nil(t, got.ReadAt)
}

func TestSoftDelete_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)
	m := send(t, repo, 1, 2, "hi")

	_, err := repo.SoftDelete(ctx, m.ID, 3)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	state, err := repo.SoftDelete(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, repository.PartiallyDeleted, state)

	// sender-only delete leaves it with the recipient
	assert.Equal(t, []uint64{m.ID}, folder(t, repo, 2, filter.Inbox))
	assert.Equal(t, []uint64{m.ID}, thread(t, repo, 2, 1))
	assert.Empty(t, folder(t, repo, 1, filter.Outbox))

	// deleting twice keeps the ratchet where it is
	state, err = repo.SoftDelete(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, repository.PartiallyDeleted, state)

	state, err = repo.SoftDelete(ctx, m.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, repository.Purged, state)

	_, err = repo.GetMessage(ctx, m.ID, 1)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	_, err = repo.GetMessage(ctx, m.ID, 2)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	assert.Empty(t, thread(t, repo, 2, 1))

	_, err = repo.SoftDelete(ctx, m.ID, 2)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestSoftDelete_MessageToSelfPurgesAtOnce(t *testing.T) {
	repo := newMessageRepo(t)
	m := send(t, repo, 4, 4, "note to self")

	state, err := repo.SoftDelete(context.Background(), m.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, repository.Purged, state)
}

func TestGetMessage(t *testing.T) {
	ctx := context.Background()
	repo := newMessageRepo(t)
	m := send(t, repo, 1, 2, "hi")

	got, err := repo.GetMessage(ctx, m.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)

	_, err = repo.GetMessage(ctx, m.ID, 3)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	_, err = repo.SoftDelete(ctx, m.ID, 2)
	require.NoError(t, err)
	_, err = repo.GetMessage(ctx, m.ID, 2)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	got, err = repo.GetMessage(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.RecipientDeleted)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, repository.Active, repository.StateOf(&db.Message{}))
	assert.Equal(t, repository.PartiallyDeleted, repository.StateOf(&db.Message{SenderDeleted: true}))
	assert.Equal(t, repository.PartiallyDeleted, repository.StateOf(&db.Message{RecipientDeleted: true}))
	assert.Equal(t, repository.Purged, repository.StateOf(&db.Message{SenderDeleted: true, RecipientDeleted: true}))
	assert.Equal(t, "partially_deleted", repository.PartiallyDeleted.String())
}
