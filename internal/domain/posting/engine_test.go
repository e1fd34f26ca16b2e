package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/security"
	"tradelink/internal/core/types"
)

// --- Test doubles ---

type fakeTxManager struct {
	fail bool
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if m.fail {
		return errors.New("commit failed")
	}
	return nil
}

type fakeStore struct {
	saved        []entity.InventoryMovement
	staleDeletes []int
	fullDeletes  []id.ID
	saveErr      error
}

func (s *fakeStore) SaveMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, movements...)
	return nil
}

func (s *fakeStore) DeleteStaleMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	s.staleDeletes = append(s.staleDeletes, beforeVersion)
	return nil
}

func (s *fakeStore) DeleteMovements(ctx context.Context, recorderID id.ID) error {
	s.fullDeletes = append(s.fullDeletes, recorderID)
	return nil
}

// saleDoc is a minimal postable document issuing one sale movement.
type saleDoc struct {
	entity.Document
	productID id.ID
	qty       types.Pieces
}

func newSaleDoc(qty types.Pieces) *saleDoc {
	return &saleDoc{
		Document:  entity.NewDocument(),
		productID: id.New(),
		qty:       qty,
	}
}

func (d *saleDoc) GetDocumentType() string { return "TestSale" }

func (d *saleDoc) GenerateMovements(ctx context.Context) (*MovementSet, error) {
	set := NewMovementSet()
	base := entity.NewMovementBase(d.ID, d.GetDocumentType(), d.PostedVersion+1, d.Date)
	set.AddInventory(entity.NewSaleMovement(base, d.productID, d.qty))
	return set, nil
}

var _ Postable = (*saleDoc)(nil)

// --- Tests ---

func TestEnginePost(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	engine := NewEngine(store, &fakeTxManager{}, nil)
	doc := newSaleDoc(10)

	var docSaved bool
	err := engine.Post(ctx, doc, func(ctx context.Context) error {
		docSaved = true
		return nil
	})
	require.NoError(t, err)

	assert.True(t, docSaved)
	assert.True(t, doc.Posted)
	assert.Equal(t, 1, doc.PostedVersion)
	require.Len(t, store.saved, 1)
	assert.Equal(t, types.Pieces(-10), store.saved[0].QtyDelta)
	assert.Equal(t, []int{1}, store.staleDeletes)
}

func TestEnginePost_RepostBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	engine := NewEngine(store, &fakeTxManager{}, nil)
	doc := newSaleDoc(10)
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, engine.Post(ctx, doc, noop))
	require.NoError(t, engine.Unpost(ctx, doc, noop))
	require.NoError(t, engine.Post(ctx, doc, noop))

	assert.Equal(t, 2, doc.PostedVersion)
	assert.Equal(t, 2, store.saved[1].RecorderVersion)
	assert.Equal(t, []int{1, 2}, store.staleDeletes)
}

func TestEnginePost_ClosedPeriod(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	closedUntil := time.Now().UTC().Add(24 * time.Hour)
	engine := NewEngine(store, &fakeTxManager{}, security.NewStrictPolicy(closedUntil))
	doc := newSaleDoc(10)

	err := engine.Post(ctx, doc, func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.False(t, doc.Posted)
	assert.Empty(t, store.saved)
}

func TestEnginePost_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	engine := NewEngine(store, &fakeTxManager{fail: true}, nil)
	doc := newSaleDoc(10)

	err := engine.Post(ctx, doc, func(ctx context.Context) error { return nil })
	require.Error(t, err)

	assert.False(t, doc.Posted)
	assert.Equal(t, 0, doc.PostedVersion)
}

func TestEnginePost_InvalidMovementRejected(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	engine := NewEngine(store, &fakeTxManager{}, nil)

	// Negative sale quantity flips the delta sign, violating the
	// movement semantics
	doc := newSaleDoc(-5)

	err := engine.Post(ctx, doc, func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.Empty(t, store.saved)
	assert.False(t, doc.Posted)
}

func TestEngineUnpost(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	engine := NewEngine(store, &fakeTxManager{}, nil)
	doc := newSaleDoc(10)
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, engine.Post(ctx, doc, noop))
	require.NoError(t, engine.Unpost(ctx, doc, noop))

	assert.False(t, doc.Posted)
	assert.Equal(t, []id.ID{doc.ID}, store.fullDeletes)
}

func TestEngineUnpost_NotPosted(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&fakeStore{}, &fakeTxManager{}, nil)
	doc := newSaleDoc(10)

	err := engine.Unpost(ctx, doc, func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}
