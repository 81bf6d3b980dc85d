package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/api/models"
	"shoppulse/api/snapshot"
	"shoppulse/api/store"
)

type fakeProvider struct {
	snap    *models.Snapshot
	err     error
	gotDays int
}

func (f *fakeProvider) Assemble(ctx context.Context, days int) (*models.Snapshot, error) {
	f.gotDays = days
	return f.snap, f.err
}

type fakeRefStore struct {
	date time.Time
	err  error
}

func (f *fakeRefStore) MaxEventDate(ctx context.Context) (time.Time, error) {
	return f.date, f.err
}

func newTestRouter(h *SnapshotHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/stats/snapshot", h.GetSnapshot)
	r.GET("/api/stats/reference-date", h.GetReferenceDate)
	return r
}

func TestGetSnapshotOK(t *testing.T) {
	provider := &fakeProvider{snap: &models.Snapshot{TotalUsers: 123, WindowDays: 7}}
	h := NewSnapshotHandlers(provider, &fakeRefStore{}, snapshot.NewCache(nil))
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/snapshot?days=7", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, provider.gotDays)

	var got models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, uint64(123), got.TotalUsers)
}

func TestGetSnapshotDefaultsDays(t *testing.T) {
	provider := &fakeProvider{snap: &models.Snapshot{}}
	h := NewSnapshotHandlers(provider, &fakeRefStore{}, snapshot.NewCache(nil))
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/snapshot", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, provider.gotDays)
}

func TestGetSnapshotBadDays(t *testing.T) {
	provider := &fakeProvider{snap: &models.Snapshot{}}
	h := NewSnapshotHandlers(provider, &fakeRefStore{}, snapshot.NewCache(nil))
	r := newTestRouter(h)

	for _, days := range []string{"abc", "0", "-1", "9000"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/stats/snapshot?days="+days, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", days)
	}
}

func TestGetSnapshotDataUnavailable(t *testing.T) {
	provider := &fakeProvider{err: store.ErrDataUnavailable}
	h := NewSnapshotHandlers(provider, &fakeRefStore{}, snapshot.NewCache(nil))
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/snapshot?days=7", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetReferenceDate(t *testing.T) {
	ref := time.Date(2014, time.December, 12, 0, 0, 0, 0, time.UTC)
	h := NewSnapshotHandlers(&fakeProvider{}, &fakeRefStore{date: ref}, snapshot.NewCache(nil))
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/reference-date", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"referenceDate": "2014-12-12"}`, w.Body.String())
}

func TestGetReferenceDateDataUnavailable(t *testing.T) {
	h := NewSnapshotHandlers(&fakeProvider{}, &fakeRefStore{err: store.ErrDataUnavailable}, snapshot.NewCache(nil))
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/reference-date", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
