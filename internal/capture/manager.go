package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/geo"
	"github.com/skillhub/evidence-api/internal/models"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

// Manager owns the live capture sessions. Each assessor has at most one
// open session; opening a new one closes the previous.
type Manager struct {
	provider        CameraProvider
	geocoder        geo.Geocoder
	geocodeInterval time.Duration
	geocodeTimeout  time.Duration
	log             *zap.Logger

	mu         sync.Mutex
	byID       map[string]*Session
	byUser     map[string]*Session
	openedAt   map[string]time.Time
	onGeocode  func(ok bool)
}

// NewManager builds a session manager.
func NewManager(provider CameraProvider, geocoder geo.Geocoder, geocodeInterval, geocodeTimeout time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		provider:        provider,
		geocoder:        geocoder,
		geocodeInterval: geocodeInterval,
		geocodeTimeout:  geocodeTimeout,
		log:             log,
		byID:            make(map[string]*Session),
		byUser:          make(map[string]*Session),
		openedAt:        make(map[string]time.Time),
	}
}

// ObserveGeocodes registers fn to receive the outcome of every reverse
// geocode performed by session trackers opened after the call.
func (m *Manager) ObserveGeocodes(fn func(ok bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onGeocode = fn
}

// Open starts a capture session for the assessor. An existing session of
// the same user is closed first.
func (m *Manager) Open(ctx context.Context, username, batchID string, assessmentType models.AssessmentType) (*Session, error) {
	if !assessmentType.Valid() {
		return nil, appErrors.ErrValidation.WithMessage("unknown assessment type")
	}

	m.mu.Lock()
	prev := m.byUser[username]
	m.mu.Unlock()
	if prev != nil {
		if err := m.Close(prev.ID); err != nil {
			m.log.Warn("close previous session", zap.String("session_id", prev.ID), zap.Error(err))
		}
	}

	source, err := OpenPreferRear(ctx, m.provider)
	if err != nil {
		return nil, err
	}

	tracker := geo.NewTracker(m.geocoder, m.geocodeInterval, m.geocodeTimeout, m.log, nil)
	m.mu.Lock()
	onGeocode := m.onGeocode
	m.mu.Unlock()
	if onGeocode != nil {
		tracker.ObserveLookups(onGeocode)
	}
	session := NewSession(uuid.NewString(), username, batchID, assessmentType, source, tracker)

	m.mu.Lock()
	m.byID[session.ID] = session
	m.byUser[username] = session
	m.openedAt[session.ID] = time.Now()
	m.mu.Unlock()

	m.log.Info("capture session opened",
		zap.String("session_id", session.ID),
		zap.String("batch_id", batchID),
		zap.String("type", string(assessmentType)),
	)
	return session, nil
}

// Get returns the session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.byID[id]
	if !ok {
		return nil, appErrors.ErrNotFound.WithMessage("capture session not found")
	}
	return session, nil
}

// Close shuts the session down and forgets it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.byID[id]
	if ok {
		delete(m.byID, id)
		delete(m.openedAt, id)
		if m.byUser[session.Username] == session {
			delete(m.byUser, session.Username)
		}
	}
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrNotFound.WithMessage("capture session not found")
	}
	return session.Close()
}

// Reap closes sessions that have been open longer than ttl. It returns
// the number of sessions closed.
func (m *Manager) Reap(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var expired []string
	for id, opened := range m.openedAt {
		if opened.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := m.Close(id); err != nil {
			m.log.Warn("reap session", zap.String("session_id", id), zap.Error(err))
		}
	}
	if len(expired) > 0 {
		m.log.Info("expired capture sessions closed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// StartReaper periodically reaps expired sessions until ctx is cancelled.
func (m *Manager) StartReaper(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Reap(ttl)
			}
		}
	}()
}
