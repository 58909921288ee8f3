package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petition-service/internal/model"
	"petition-service/internal/repository"
)

func TestNotificationStoreDedupesDeliveries(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()
	petitionID := uuid.New()
	officer := uuid.New()

	first := &model.Notification{Type: model.NotificationPetitionAssigned, PetitionID: petitionID, Title: "Assigned"}
	created, err := store.Create(ctx, first, []model.NotificationDelivery{{RecipientID: officer}})
	require.NoError(t, err)
	assert.Len(t, created, 1)

	retry := &model.Notification{Type: model.NotificationPetitionAssigned, PetitionID: petitionID, Title: "Assigned"}
	created, err = store.Create(ctx, retry, []model.NotificationDelivery{{RecipientID: officer}})
	require.NoError(t, err)
	assert.Empty(t, created)

	views, err := store.ListForRecipient(ctx, officer, false, 0)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestNotificationStoreReadStateIsPerRecipient(t *testing.T) {
	store := NewNotificationStore()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	n := &model.Notification{Type: model.NotificationInvestigationCompleted, PetitionID: uuid.New(), Title: "Report"}
	_, err := store.Create(ctx, n, []model.NotificationDelivery{{RecipientID: a}, {RecipientID: b}})
	require.NoError(t, err)

	readAt := time.Now()
	require.NoError(t, store.MarkRead(ctx, n.ID, a, readAt))
	require.NoError(t, store.MarkRead(ctx, n.ID, a, readAt.Add(time.Minute)))

	viewsA, err := store.ListForRecipient(ctx, a, false, 0)
	require.NoError(t, err)
	require.Len(t, viewsA, 1)
	assert.True(t, viewsA[0].Read)
	assert.True(t, viewsA[0].ReadAt.Equal(readAt))

	unreadB, err := store.ListForRecipient(ctx, b, true, 0)
	require.NoError(t, err)
	assert.Len(t, unreadB, 1)

	count, err := store.CountUnread(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, store.MarkRead(ctx, n.ID, uuid.New(), readAt), repository.ErrNotFound)
}
