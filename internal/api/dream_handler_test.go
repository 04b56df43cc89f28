package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDreams struct {
	service.DreamService
	created    *service.DreamInput
	listFilter *store.DreamFilter
	getErr     error
}

func (f *fakeDreams) CreateDream(_ context.Context, userID uuid.UUID, in service.DreamInput) (*domain.Dream, error) {
	f.created = &in
	d := domain.NewDream(userID, in.DreamDate)
	d.Title = in.Title
	return d, nil
}

func (f *fakeDreams) ListDreams(_ context.Context, _ uuid.UUID, filter store.DreamFilter) ([]*domain.Dream, error) {
	f.listFilter = &filter
	return []*domain.Dream{}, nil
}

func (f *fakeDreams) GetDream(_ context.Context, userID, dreamID uuid.UUID) (*domain.Dream, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d := domain.NewDream(userID, time.Now())
	d.ID = dreamID
	return d, nil
}

func TestDreamHandler_CreateDream(t *testing.T) {
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		dreams := &fakeDreams{}
		h := NewDreamHandler(dreams, discardLogger())

		rec := serve(t, http.MethodPost, "/api/dreams", "/api/dreams", h.CreateDream, userID,
			`{"dream_date":"2026-03-14","title":"하늘","body_text":"하늘을 날았다","lucidity_level":4,"emotion_tags":["happy"]}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, dreams.created)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), dreams.created.DreamDate)
		assert.Equal(t, 4, *dreams.created.LucidityLevel)
		assert.Equal(t, "하늘", decodeBody[domain.Dream](t, rec).Title)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "bad date", body: `{"dream_date":"14/03/2026"}`},
		{name: "lucidity out of range", body: `{"lucidity_level":6}`},
		{name: "unknown dream type", body: `{"dream_type":"daydream"}`},
		{name: "too many emotions", body: `{"emotion_tags":["a","b","c","d","e","f"]}`},
		{name: "unknown field", body: `{"mood":"calm"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dreams := &fakeDreams{}
			h := NewDreamHandler(dreams, discardLogger())

			rec := serve(t, http.MethodPost, "/api/dreams", "/api/dreams", h.CreateDream, userID, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, dreams.created)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		h := NewDreamHandler(&fakeDreams{}, discardLogger())
		rec := serve(t, http.MethodPost, "/api/dreams", "/api/dreams", h.CreateDream, uuid.Nil, `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDreamHandler_GetDream(t *testing.T) {
	userID := uuid.New()
	dreamID := uuid.New()

	tests := []struct {
		name     string
		target   string
		getErr   error
		wantCode int
	}{
		{name: "found", target: "/api/dreams/" + dreamID.String(), wantCode: http.StatusOK},
		{name: "other user's dream", target: "/api/dreams/" + dreamID.String(), getErr: service.ErrNotOwned, wantCode: http.StatusForbidden},
		{name: "missing", target: "/api/dreams/" + dreamID.String(), getErr: store.ErrDreamNotFound, wantCode: http.StatusNotFound},
		{name: "malformed id", target: "/api/dreams/not-a-uuid", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDreamHandler(&fakeDreams{getErr: tt.getErr}, discardLogger())

			rec := serve(t, http.MethodGet, "/api/dreams/{id}", tt.target, h.GetDream, userID, "")

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestDreamHandler_ListDreamsFilters(t *testing.T) {
	userID := uuid.New()

	dreams := &fakeDreams{}
	h := NewDreamHandler(dreams, discardLogger())
	rec := serve(t, http.MethodGet, "/api/dreams",
		"/api/dreams?skip=20&limit=10&start_date=2026-01-01&end_date=2026-01-31&dream_type=lucid&emotion=calm",
		h.ListDreams, userID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, dreams.listFilter)
	assert.Equal(t, 20, dreams.listFilter.Skip)
	assert.Equal(t, 10, dreams.listFilter.Limit)
	assert.Equal(t, domain.DreamTypeLucid, dreams.listFilter.DreamType)
	assert.Equal(t, "calm", dreams.listFilter.Emotion)
	require.NotNil(t, dreams.listFilter.StartDate)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *dreams.listFilter.StartDate)

	for _, query := range []string{"limit=0", "limit=101", "skip=-1", "limit=abc", "start_date=2026-02-01&end_date=2026-01-01"} {
		rec := serve(t, http.MethodGet, "/api/dreams", "/api/dreams?"+query, h.ListDreams, userID, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestDreamHandler_SearchRequiresQuery(t *testing.T) {
	h := NewDreamHandler(&fakeDreams{}, discardLogger())

	rec := serve(t, http.MethodGet, "/api/dreams/search", "/api/dreams/search?q=%20", h.SearchDreams, uuid.New(), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
