package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

func TestNearestStores_SortedByDistance(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	uow := persistence.NewGormUnitOfWork(db)

	umeda := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	nakatsu := helpers.SeedStore(t, db, "中津店", 34.7100, 135.4950)
	namba := helpers.SeedStore(t, db, "難波店", 34.6659, 135.5013)

	_, err := NewRecomputeMatrixHandler(uow, nil, logging.NewNop()).
		Handle(ctx, &RecomputeMatrixCommand{})
	require.NoError(t, err)

	result, err := NewNearestStoresHandler(uow, logging.NewNop()).
		Handle(ctx, &NearestStoresQuery{StoreID: umeda.StoreID})
	require.NoError(t, err)

	response := result.(*NearestStoresResponse)
	assert.Equal(t, umeda.StoreID, response.FromStoreID)
	require.Len(t, response.Stores, 2)
	assert.Equal(t, nakatsu.StoreID, response.Stores[0].StoreID)
	assert.Equal(t, "中津店", response.Stores[0].StoreName)
	assert.Equal(t, namba.StoreID, response.Stores[1].StoreID)
	assert.Less(t, response.Stores[0].DistanceKm, response.Stores[1].DistanceKm)
}

func TestNearestStores_LimitCapsResults(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	uow := persistence.NewGormUnitOfWork(db)

	from := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	helpers.SeedStore(t, db, "中津店", 34.7100, 135.4950)
	helpers.SeedStore(t, db, "難波店", 34.6659, 135.5013)
	helpers.SeedStore(t, db, "天王寺店", 34.6466, 135.5131)

	_, err := NewRecomputeMatrixHandler(uow, nil, logging.NewNop()).
		Handle(ctx, &RecomputeMatrixCommand{})
	require.NoError(t, err)

	result, err := NewNearestStoresHandler(uow, logging.NewNop()).
		Handle(ctx, &NearestStoresQuery{StoreID: from.StoreID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, result.(*NearestStoresResponse).Stores, 1)
}

func TestNearestStores_UnknownStore(t *testing.T) {
	db := helpers.NewTestDB(t)

	_, err := NewNearestStoresHandler(persistence.NewGormUnitOfWork(db), logging.NewNop()).
		Handle(context.Background(), &NearestStoresQuery{StoreID: 99})
	require.Error(t, err)

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
