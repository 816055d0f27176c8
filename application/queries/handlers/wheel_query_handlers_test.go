package handlers

import (
	"context"
	"testing"
	"time"

	"axon-backend/application/queries"
	"axon-backend/application/report"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/infrastructure/persistence/memory"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seed(t *testing.T, repo *memory.WheelRepository, owner string, visibility valueobjects.Visibility) *aggregates.Wheel {
	t.Helper()
	w, err := aggregates.NewWheel("Remote work", owner, nil)
	require.NoError(t, err)

	likely := entities.NewNode("a", "Less commuting", 1, valueobjects.Origin)
	likely.Data.Votes = map[string]int{"u": 4}
	likely.Data.Probability = 4
	g := w.Graph().WithNode(likely).WithEdge(entities.NewEdge(valueobjects.RootNodeID, "a", "causes"))
	require.NoError(t, w.Replace(owner, "", g))
	require.NoError(t, w.SetVisibility(owner, visibility))
	require.NoError(t, repo.Save(context.Background(), w))
	return w
}

func TestGetWheelHandler_Access(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWheelRepository()
	private := seed(t, repo, "owner", valueobjects.VisibilityPrivate)
	public := seed(t, repo, "owner", valueobjects.VisibilityPublic)
	h := NewGetWheelHandler(repo, zap.NewNop())

	tests := []struct {
		name    string
		wheel   *aggregates.Wheel
		user    string
		allowed bool
	}{
		{"owner reads private", private, "owner", true},
		{"stranger cannot read private", private, "stranger", false},
		{"anonymous cannot read private", private, "", false},
		{"stranger reads public", public, "stranger", true},
		{"anonymous reads public", public, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := h.Handle(ctx, queries.GetWheelQuery{WheelID: tt.wheel.ID().String(), UserID: tt.user})
			if !tt.allowed {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsNotFound(err))
				assert.Equal(t, "Wheel not found or access denied", pkgerrors.GetAppError(err).Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wheel.ID().String(), doc.ID)
			assert.Len(t, doc.Nodes, 2)
		})
	}

	_, err := h.Handle(ctx, queries.GetWheelQuery{WheelID: "missing", UserID: "owner"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestListWheelsHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWheelRepository()
	seed(t, repo, "owner", valueobjects.VisibilityPrivate)
	time.Sleep(2 * time.Millisecond)
	newest := seed(t, repo, "owner", valueobjects.VisibilityPublic)
	seed(t, repo, "other", valueobjects.VisibilityPublic)
	h := NewListWheelsHandler(repo, zap.NewNop())

	docs, err := h.Handle(ctx, queries.ListWheelsQuery{UserID: "owner"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, newest.ID().String(), docs[0].ID)

	docs, err = h.Handle(ctx, queries.ListWheelsQuery{UserID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestGenerateReportHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWheelRepository()
	w := seed(t, repo, "owner", valueobjects.VisibilityPrivate)
	h := NewGenerateReportHandler(repo, report.NewAnalyzer(nil), zap.NewNop())

	rep, err := h.Handle(ctx, queries.GenerateReportQuery{WheelID: w.ID().String(), UserID: "owner"})
	require.NoError(t, err)
	require.Len(t, rep.KeyOutcomes, 1)
	assert.Equal(t, "Less commuting", rep.KeyOutcomes[0].Label)

	_, err = h.Handle(ctx, queries.GenerateReportQuery{WheelID: w.ID().String(), UserID: "stranger"})
	assert.True(t, pkgerrors.IsNotFound(err))
}
