package handlers

import (
	"context"
	"errors"
	"testing"

	"axon-backend/application/commands"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/validators"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/domain/events"
	"axon-backend/domain/services"
	"axon-backend/infrastructure/persistence/memory"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	return m.Called(ctx, evts).Error(0)
}

func eventsOfType(eventType string) interface{} {
	return mock.MatchedBy(func(evts []events.DomainEvent) bool {
		return len(evts) == 1 && evts[0].GetEventType() == eventType
	})
}

// conflictingRepo fails the first n saves with a conflict
type conflictingRepo struct {
	*memory.WheelRepository
	conflicts int
	saves     int
}

func (r *conflictingRepo) Save(ctx context.Context, w *aggregates.Wheel) error {
	r.saves++
	if r.saves <= r.conflicts {
		return pkgerrors.NewConflictError("raced")
	}
	return r.WheelRepository.Save(ctx, w)
}

func seedWheel(t *testing.T, repo *memory.WheelRepository) *aggregates.Wheel {
	t.Helper()
	w, err := aggregates.NewWheel("Remote work", "owner", nil)
	require.NoError(t, err)
	g := w.Graph().
		WithNode(entities.NewNode("a", "Less commuting", 1, valueobjects.Origin)).
		WithEdge(entities.NewEdge(valueobjects.RootNodeID, "a", ""))
	require.NoError(t, w.Replace("owner", "", g))
	require.NoError(t, repo.Save(context.Background(), w))
	return w
}

func TestCreateWheelHandler(t *testing.T) {
	// Arrange
	repo := memory.NewWheelRepository()
	pub := new(mockPublisher)
	pub.On("PublishBatch", mock.Anything, eventsOfType(events.TypeWheelCreated)).Return(nil)
	h := NewCreateWheelHandler(repo, pub, nil, zap.NewNop())

	// Act
	err := h.Handle(context.Background(), commands.CreateWheelCommand{
		WheelID: "w1", UserID: "u1", Title: "  Remote work ",
	})

	// Assert
	require.NoError(t, err)
	w, err := repo.GetByID(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Remote work", w.Title())
	assert.Equal(t, valueobjects.VisibilityPrivate, w.Visibility())
	root, ok := w.Graph().Root()
	require.True(t, ok)
	assert.Equal(t, valueobjects.RootNodeID, root.ID)
	pub.AssertExpectations(t)
}

func TestCreateWheelHandler_PublishFailureIsNotFatal(t *testing.T) {
	repo := memory.NewWheelRepository()
	pub := new(mockPublisher)
	pub.On("PublishBatch", mock.Anything, mock.Anything).Return(errors.New("bus down"))
	h := NewCreateWheelHandler(repo, pub, nil, zap.NewNop())

	err := h.Handle(context.Background(), commands.CreateWheelCommand{WheelID: "w1", UserID: "u1", Title: "t"})
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), "w1")
	assert.NoError(t, err)
}

func TestSaveWheelHandler(t *testing.T) {
	ctx := context.Background()
	validator := validators.NewGraphValidator(nil)

	t.Run("owner saves and probabilities are recomputed", func(t *testing.T) {
		repo := memory.NewWheelRepository()
		w := seedWheel(t, repo)
		pub := new(mockPublisher)
		pub.On("PublishBatch", mock.Anything, eventsOfType(events.TypeWheelSaved)).Return(nil)
		h := NewSaveWheelHandler(repo, pub, validator, zap.NewNop())

		g := w.Graph()
		g, _ = g.UpdateNode("a", func(n *entities.Node) {
			n.Data.Votes = map[string]int{"x": 2, "y": 5}
			n.Data.Probability = 99
		})
		err := h.Handle(ctx, commands.SaveWheelCommand{
			WheelID: w.ID().String(), UserID: "owner", Title: "New title", Nodes: g.Nodes, Edges: g.Edges,
		})
		require.NoError(t, err)

		saved, _ := repo.GetByID(ctx, w.ID())
		assert.Equal(t, "New title", saved.Title())
		node, _ := saved.Graph().Node("a")
		assert.InDelta(t, 3.5, node.Data.Probability, 1e-9)
		pub.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := memory.NewWheelRepository()
		w := seedWheel(t, repo)
		h := NewSaveWheelHandler(repo, nil, validator, zap.NewNop())

		g := w.Graph()
		err := h.Handle(ctx, commands.SaveWheelCommand{
			WheelID: w.ID().String(), UserID: "intruder", Nodes: g.Nodes, Edges: g.Edges,
		})
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("invalid diagram is rejected", func(t *testing.T) {
		repo := memory.NewWheelRepository()
		w := seedWheel(t, repo)
		h := NewSaveWheelHandler(repo, nil, validator, zap.NewNop())

		g := w.Graph().WithEdge(entities.NewEdge("a", valueobjects.RootNodeID, ""))
		err := h.Handle(ctx, commands.SaveWheelCommand{
			WheelID: w.ID().String(), UserID: "owner", Nodes: g.Nodes, Edges: g.Edges,
		})
		assert.True(t, pkgerrors.IsValidation(err))

		unchanged, _ := repo.GetByID(ctx, w.ID())
		assert.Len(t, unchanged.Graph().Edges, 1)
	})

	t.Run("missing wheel", func(t *testing.T) {
		h := NewSaveWheelHandler(memory.NewWheelRepository(), nil, validator, zap.NewNop())
		err := h.Handle(ctx, commands.SaveWheelCommand{WheelID: "nope", UserID: "owner"})
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestSetVisibilityHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWheelRepository()
	w := seedWheel(t, repo)
	pub := new(mockPublisher)
	pub.On("PublishBatch", mock.Anything, eventsOfType(events.TypeVisibilityChanged)).Return(nil).Once()
	h := NewSetVisibilityHandler(repo, pub, zap.NewNop())

	cmd := commands.SetVisibilityCommand{WheelID: w.ID().String(), UserID: "owner", Visibility: "public"}
	require.NoError(t, h.Handle(ctx, cmd))

	got, _ := repo.GetByID(ctx, w.ID())
	assert.Equal(t, valueobjects.VisibilityPublic, got.Visibility())

	// same value again: no write, no event
	require.NoError(t, h.Handle(ctx, cmd))
	pub.AssertExpectations(t)

	cmd.UserID = "someone"
	assert.True(t, pkgerrors.IsForbidden(h.Handle(ctx, cmd)))

	cmd.UserID = "owner"
	cmd.Visibility = "friends"
	assert.True(t, pkgerrors.IsValidation(h.Handle(ctx, cmd)))
}

func TestDeleteWheelHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWheelRepository()
	w := seedWheel(t, repo)
	pub := new(mockPublisher)
	pub.On("PublishBatch", mock.Anything, eventsOfType(events.TypeWheelDeleted)).Return(nil)
	h := NewDeleteWheelHandler(repo, pub, zap.NewNop())

	err := h.Handle(ctx, commands.DeleteWheelCommand{WheelID: w.ID().String(), UserID: "someone"})
	assert.True(t, pkgerrors.IsForbidden(err))

	require.NoError(t, h.Handle(ctx, commands.DeleteWheelCommand{WheelID: w.ID().String(), UserID: "owner"}))
	_, err = repo.GetByID(ctx, w.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	pub.AssertExpectations(t)
}

func TestCastVoteHandler(t *testing.T) {
	ctx := context.Background()
	votes := services.NewVoteAggregator(nil)

	t.Run("records the vote", func(t *testing.T) {
		repo := memory.NewWheelRepository()
		w := seedWheel(t, repo)
		pub := new(mockPublisher)
		pub.On("PublishBatch", mock.Anything, eventsOfType(events.TypeVoteCast)).Return(nil)
		h := NewCastVoteHandler(repo, pub, votes, zap.NewNop())

		require.NoError(t, h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "a", UserID: "owner", Vote: 4}))
		require.NoError(t, h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "a", UserID: "owner", Vote: 2}))

		got, _ := repo.GetByID(ctx, w.ID())
		node, _ := got.Graph().Node("a")
		assert.Equal(t, map[string]int{"owner": 2}, node.Data.Votes)
		assert.Equal(t, 2.0, node.Data.Probability)
	})

	t.Run("private wheel hides from other voters", func(t *testing.T) {
		repo := memory.NewWheelRepository()
		w := seedWheel(t, repo)
		h := NewCastVoteHandler(repo, nil, votes, zap.NewNop())

		err := h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "a", UserID: "stranger", Vote: 3})
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("bad vote and missing node", func(t *testing.T) {
		repo := memory.NewWheelRepository()
		w := seedWheel(t, repo)
		h := NewCastVoteHandler(repo, nil, votes, zap.NewNop())

		err := h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "a", UserID: "owner", Vote: 6})
		assert.True(t, pkgerrors.IsValidation(err))
		err = h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "zz", UserID: "owner", Vote: 3})
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("retries on conflict", func(t *testing.T) {
		backing := memory.NewWheelRepository()
		w := seedWheel(t, backing)
		repo := &conflictingRepo{WheelRepository: backing, conflicts: 2}
		h := NewCastVoteHandler(repo, nil, votes, zap.NewNop())

		require.NoError(t, h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "a", UserID: "owner", Vote: 5}))
		assert.Equal(t, 3, repo.saves)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		backing := memory.NewWheelRepository()
		w := seedWheel(t, backing)
		repo := &conflictingRepo{WheelRepository: backing, conflicts: 10}
		h := NewCastVoteHandler(repo, nil, votes, zap.NewNop())

		err := h.Handle(ctx, commands.CastVoteCommand{WheelID: w.ID().String(), NodeID: "a", UserID: "owner", Vote: 5})
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, maxVoteAttempts, repo.saves)
	})
}
