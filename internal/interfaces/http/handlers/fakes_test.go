package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/linkyfire/guide-backend/internal/domain/entity"
	domainErrors "github.com/linkyfire/guide-backend/pkg/errors"
)

type fakeGeocoder struct {
	mu       sync.Mutex
	resolved string
	err      error
	calls    int
}

func (g *fakeGeocoder) Resolve(ctx context.Context, coordinates string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.resolved == "" {
		return coordinates, nil
	}
	return g.resolved, nil
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeModel struct {
	mu           sync.Mutex
	completeResp string
	completeErr  error
	streamChunks []string
	streamErr    error
	spots        []entity.Attraction
	suggestErr   error
	calls        int
}

func (m *fakeModel) Complete(ctx context.Context, userMessage, location string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.completeResp, m.completeErr
}

func (m *fakeModel) CompleteStream(ctx context.Context, userMessage string, deltaCh chan<- string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.streamErr != nil {
		return "", m.streamErr
	}
	for _, chunk := range m.streamChunks {
		deltaCh <- chunk
	}
	return strings.Join(m.streamChunks, ""), nil
}

func (m *fakeModel) SuggestAttractions(ctx context.Context, location string) ([]entity.Attraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.spots, m.suggestErr
}

func (m *fakeModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeRepository is an in-memory MessageRepository. Saved records are also
// published on saved so tests can wait for fire-and-forget persistence.
type fakeRepository struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]*entity.Message
	saveErr error
	saved   chan *entity.Message
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		nextID:  1,
		records: make(map[uint]*entity.Message),
		saved:   make(chan *entity.Message, 8),
	}
}

func (r *fakeRepository) Save(ctx context.Context, userID int64, userMessage, aiResponse string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	msg := &entity.Message{
		ID:          r.nextID,
		UserID:      userID,
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		Timestamp:   time.Now().UTC(),
	}
	r.records[msg.ID] = msg
	r.nextID++
	r.saved <- msg
	return msg, nil
}

func (r *fakeRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Message
	// Newest-first by id; the map is small enough to scan in reverse id order.
	for id := r.nextID; id > 0; id-- {
		if msg, ok := r.records[id]; ok && msg.UserID == userID {
			result = append(result, msg)
		}
	}
	if offset >= len(result) {
		return []*entity.Message{}, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeRepository) FindByID(ctx context.Context, id uint) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.records[id]
	if !ok {
		return nil, domainErrors.NewNotFoundError("message not found")
	}
	return msg, nil
}

func (r *fakeRepository) DeleteByID(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}
