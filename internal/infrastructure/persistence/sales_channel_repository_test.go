package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/persistence/models"
)

func TestGormSalesChannelRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesChannelRepository(db)
	ctx := context.Background()

	id := seedPOSChannel(t, db, "Cafe", true)

	t.Run("loads channel with POS settings", func(t *testing.T) {
		ch, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Cafe", ch.Name)
		assert.True(t, ch.IsPOS())
		assert.Equal(t, "api-key-Cafe", ch.APIKey())
		assert.False(t, ch.HasWebhook())
	})

	t.Run("returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSalesChannelRepository_SaveSigningKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesChannelRepository(db)
	ctx := context.Background()

	id := seedPOSChannel(t, db, "Cafe", true)
	key := "signing-key"

	require.NoError(t, repo.SaveSigningKey(ctx, id, &key))
	ch, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "signing-key", ch.SigningKey())

	require.NoError(t, repo.SaveSigningKey(ctx, id, nil))
	ch, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ch.HasWebhook())

	assert.ErrorIs(t, repo.SaveSigningKey(ctx, uuid.New(), &key), shared.ErrNotFound)
}

func TestGormSalesChannelRepository_FindActivePOS(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesChannelRepository(db)
	ctx := context.Background()

	seedPOSChannel(t, db, "Bistro", true)
	seedPOSChannel(t, db, "Closed", false)
	require.NoError(t, db.Create(&models.SalesChannelModel{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Name:      "Storefront",
		TypeID:    uuid.New(),
		Active:    true,
	}).Error)

	active, err := repo.FindActivePOS(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Bistro", active[0].Name)

	all, err := repo.FindByType(ctx, pos.SalesChannelTypePOS)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormSalesChannelRepository_SaveSigningKey_Mock(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormSalesChannelRepository(gormDB)

	mock.ExpectExec(`UPDATE "pos_sales_channels" SET .* WHERE sales_channel_id = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveSigningKey(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
