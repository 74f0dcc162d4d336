package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linkyfire/guide-backend/internal/domain/entity"
	domainErrors "github.com/linkyfire/guide-backend/pkg/errors"
)

func newChatRouter(geocoder *fakeGeocoder, model *fakeModel, repo *fakeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(geocoder, model, repo, zap.NewNop())
	router := gin.New()
	router.POST("/chat", h.Chat)
	router.POST("/chat/stream", h.ChatStream)
	router.GET("/suggest-locations", h.SuggestLocations)
	return router
}

func fiveSpots() []entity.Attraction {
	spots := make([]entity.Attraction, 5)
	for i := range spots {
		spots[i] = entity.Attraction{
			Name:          "Koutoubia Mosque",
			NameAr:        "جامع الكتبية",
			Distance:      "300m",
			WalkingTime:   "4 min",
			Direction:     "Southwest",
			Description:   "Twelfth-century mosque with a landmark minaret.",
			Rating:        4.8,
			Coordinates:   entity.Coordinates{Lat: 31.6258, Lng: -7.9891},
			GoogleMapsURL: "https://maps.google.com/?q=31.6258,-7.9891",
			VisitDuration: "20-30 min",
			Highlights:    []string{"minaret", "gardens"},
		}
	}
	return spots
}

func TestChat_Success(t *testing.T) {
	geocoder := &fakeGeocoder{resolved: "Marrakesh, Morocco"}
	model := &fakeModel{completeResp: "Start at Jemaa el-Fnaa."}
	repo := newFakeRepository()
	router := newChatRouter(geocoder, model, repo)

	req := httptest.NewRequest("POST", "/chat?user_id=7&location=31.6295,-7.9811",
		bytes.NewBufferString(`{"message":"what should I visit?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Start at Jemaa el-Fnaa.", resp.Response)

	// Persistence is awaited on this path, so the record exists already.
	saved := <-repo.saved
	assert.Equal(t, int64(7), saved.UserID)
	assert.Equal(t, "what should I visit?", saved.UserMessage)
	assert.Equal(t, "Start at Jemaa el-Fnaa.", saved.AIResponse)
}

func TestChat_MissingParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
	}{
		{name: "missing user_id", url: "/chat?location=31.6,-7.9", body: `{"message":"hi"}`},
		{name: "missing location", url: "/chat?user_id=7", body: `{"message":"hi"}`},
		{name: "missing message", url: "/chat?user_id=7&location=31.6,-7.9", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocoder := &fakeGeocoder{}
			model := &fakeModel{}
			router := newChatRouter(geocoder, model, newFakeRepository())

			req := httptest.NewRequest("POST", tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, 400, w.Code)
			assert.Equal(t, 0, model.callCount())
		})
	}
}

func TestChat_MalformedCoordinatesRejected(t *testing.T) {
	geocoder := &fakeGeocoder{err: domainErrors.NewInvalidInputError("invalid coordinates")}
	model := &fakeModel{}
	router := newChatRouter(geocoder, model, newFakeRepository())

	req := httptest.NewRequest("POST", "/chat?user_id=7&location=garbage",
		bytes.NewBufferString(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 0, model.callCount())
}

func TestChat_UpstreamFailure(t *testing.T) {
	geocoder := &fakeGeocoder{resolved: "Fes"}
	model := &fakeModel{completeErr: domainErrors.NewServiceUnavailableError("chat completion API error 500", nil)}
	router := newChatRouter(geocoder, model, newFakeRepository())

	req := httptest.NewRequest("POST", "/chat?user_id=7&location=34.0,-5.0",
		bytes.NewBufferString(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "chat completion API error 500")
}

func TestSuggestLocations_RequiresTruthyParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "user_id zero", url: "/suggest-locations?user_id=0&location=31.6,-7.9"},
		{name: "user_id missing", url: "/suggest-locations?location=31.6,-7.9"},
		{name: "location missing", url: "/suggest-locations?user_id=7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocoder := &fakeGeocoder{}
			model := &fakeModel{spots: fiveSpots()}
			router := newChatRouter(geocoder, model, newFakeRepository())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.url, nil))

			assert.Equal(t, 400, w.Code)
			// The client error must fire before any upstream call.
			assert.Equal(t, 0, geocoder.callCount())
			assert.Equal(t, 0, model.callCount())
		})
	}
}

func TestSuggestLocations_Success(t *testing.T) {
	geocoder := &fakeGeocoder{resolved: "Marrakesh, Morocco"}
	model := &fakeModel{spots: fiveSpots()}
	router := newChatRouter(geocoder, model, newFakeRepository())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/suggest-locations?user_id=7&location=31.6295,-7.9811", nil))

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Spots []entity.Attraction `json:"spots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Spots, 5)
	for _, spot := range resp.Spots {
		assert.NoError(t, spot.Validate())
	}
}

func TestChatStream_RelaysFramesAndPersistsConcatenation(t *testing.T) {
	geocoder := &fakeGeocoder{}
	model := &fakeModel{streamChunks: []string{"The ", "medina ", "awaits."}}
	repo := newFakeRepository()
	router := newChatRouter(geocoder, model, repo)

	req := httptest.NewRequest("POST", "/chat/stream?user_id=3",
		bytes.NewBufferString(`{"message":"stream it"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t,
		"data: The \n\ndata: medina \n\ndata: awaits.\n\ndata: [DONE]\n\n",
		w.Body.String())

	// Persistence is fire-and-forget; wait for the detached save.
	select {
	case saved := <-repo.saved:
		assert.Equal(t, int64(3), saved.UserID)
		assert.Equal(t, "stream it", saved.UserMessage)
		assert.Equal(t, "The medina awaits.", saved.AIResponse)
	case <-time.After(2 * time.Second):
		t.Fatal("streamed exchange was never persisted")
	}
}

func TestChatStream_DefaultsUserIDToZero(t *testing.T) {
	model := &fakeModel{streamChunks: []string{"hi"}}
	repo := newFakeRepository()
	router := newChatRouter(&fakeGeocoder{}, model, repo)

	req := httptest.NewRequest("POST", "/chat/stream",
		bytes.NewBufferString(`{"message":"anonymous"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	select {
	case saved := <-repo.saved:
		assert.Equal(t, int64(0), saved.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("streamed exchange was never persisted")
	}
}

func TestChatStream_UpstreamFailureBeforeOutput(t *testing.T) {
	model := &fakeModel{streamErr: domainErrors.NewServiceUnavailableError("stream failed", nil)}
	repo := newFakeRepository()
	router := newChatRouter(&fakeGeocoder{}, model, repo)

	req := httptest.NewRequest("POST", "/chat/stream",
		bytes.NewBufferString(`{"message":"doomed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)

	// Nothing reached the terminal frame, so nothing may be persisted.
	select {
	case <-repo.saved:
		t.Fatal("failed stream must not be persisted")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChatStream_MissingMessage(t *testing.T) {
	router := newChatRouter(&fakeGeocoder{}, &fakeModel{}, newFakeRepository())

	req := httptest.NewRequest("POST", "/chat/stream", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
