package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"axon-backend/application/session"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/infrastructure/config"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"type": errType, "message": message},
	})
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, ConsecutiveFailures: 2}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, breakerConfig(), zap.NewNop(), opts...)
}

func TestFetchWheel(t *testing.T) {
	var gotUser, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/wheels/w-1", r.URL.Path)
		gotUser = r.Header.Get("X-User-ID")
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"id":    "w-1",
			"title": "Remote work",
			"nodes": []map[string]interface{}{
				{"id": "0", "position": map[string]float64{"x": 0, "y": 0}, "data": map[string]interface{}{"label": "Remote work", "tier": 0}},
			},
			"edges":        []interface{}{},
			"ownerId":      "alice",
			"visibility":   "public",
			"lastModified": 1700000000000,
		})
	}, WithUserID("alice"), WithToken("tok"))

	doc, err := client.FetchWheel(context.Background(), "w-1")
	require.NoError(t, err)

	assert.Equal(t, "Remote work", doc.Title)
	assert.Equal(t, valueobjects.VisibilityPublic, doc.Visibility)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, valueobjects.NodeID("0"), doc.Nodes[0].ID)
	assert.Equal(t, int64(1700000000000), doc.LastModified)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestSaveWheel(t *testing.T) {
	var got session.SavePayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(w, http.StatusOK, nil)
	})

	payload := session.SavePayload{
		Title: "Renamed",
		Nodes: []entities.Node{entities.NewNode("0", "Renamed", 0, valueobjects.Origin)},
		Edges: []entities.Edge{},
	}
	require.NoError(t, client.SaveWheel(context.Background(), "w-1", payload))

	assert.Equal(t, "Renamed", got.Title)
	require.Len(t, got.Nodes, 1)
}

func TestClientErrorsKeepTheirType(t *testing.T) {
	tests := []struct {
		name   string
		status int
		typ    string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, "NOT_FOUND", pkgerrors.IsNotFound},
		{"forbidden", http.StatusForbidden, "FORBIDDEN", pkgerrors.IsForbidden},
		{"conflict without type", http.StatusConflict, "", pkgerrors.IsConflict},
		{"validation", http.StatusBadRequest, "VALIDATION", pkgerrors.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeError(w, tt.status, tt.typ, "nope")
			})

			_, err := client.FetchWheel(context.Background(), "w-1")
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Wheel not found")
	})

	for i := 0; i < 5; i++ {
		_, err := client.FetchWheel(context.Background(), "missing")
		assert.True(t, pkgerrors.IsNotFound(err))
	}
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestBreakerOpensOnServerFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "boom")
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchWheel(context.Background(), "w-1")
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.FetchWheel(context.Background(), "w-1")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must short-circuit")
}

func TestReportAndVote(t *testing.T) {
	var voteBody map[string]int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/wheels/w-1/report":
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"title":       "Futures Wheel Analysis: Remote work",
				"summary":     "1 key outcome",
				"keyOutcomes": []interface{}{},
				"scenarios":   []interface{}{},
			})
		case "/api/wheels/w-1/nodes/3/vote":
			assert.Equal(t, http.MethodPost, r.Method)
			_ = json.NewDecoder(r.Body).Decode(&voteBody)
			writeEnvelope(w, http.StatusOK, nil)
		default:
			http.NotFound(w, r)
		}
	})

	rep, err := client.Report(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Futures Wheel Analysis: Remote work", rep.Title)

	require.NoError(t, client.CastVote(context.Background(), "w-1", "3", 4))
	assert.Equal(t, 4, voteBody["vote"])
}

func TestNonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway says no", http.StatusNotFound)
	})

	_, err := client.ListWheels(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "gateway says no")
}
