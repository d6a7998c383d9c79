package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/skillhub/evidence-api/internal/geo"
	"github.com/skillhub/evidence-api/internal/models"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

const (
	outputWidth  = 1024
	outputHeight = 768
	jpegQuality  = 80
)

// Photo is one captured, processed frame.
type Photo struct {
	Data    []byte
	TakenAt time.Time
}

// Session is one assessor's capture flow for a single assessment type.
// Photos are cropped to 4:3, scaled to 1024x768 and stamped with the
// capture time and resolved location before they are stored.
type Session struct {
	ID       string
	Username string
	BatchID  string
	Type     models.AssessmentType

	mu      sync.Mutex
	source  FrameSource
	tracker *geo.Tracker
	photos  []Photo
	closed  bool
	now     func() time.Time
}

// NewSession wires a frame source and tracker into a session. The
// tracker is started so position updates begin flowing immediately.
func NewSession(id, username, batchID string, assessmentType models.AssessmentType, source FrameSource, tracker *geo.Tracker) *Session {
	tracker.Start()
	return &Session{
		ID:       id,
		Username: username,
		BatchID:  batchID,
		Type:     assessmentType,
		source:   source,
		tracker:  tracker,
		now:      time.Now,
	}
}

// Quota returns the number of photos required before submission.
func (s *Session) Quota() int {
	return s.Type.Quota()
}

// PhotoCount returns the number of photos captured so far.
func (s *Session) PhotoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

// CanCapture reports whether the session still accepts frames.
func (s *Session) CanCapture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && len(s.photos) < s.Type.Quota()
}

// CanSubmit reports whether the quota has been met.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && len(s.photos) >= s.Type.Quota()
}

// Tracker exposes the session's position tracker.
func (s *Session) Tracker() *geo.Tracker {
	return s.tracker
}

// Source exposes the session's frame source.
func (s *Session) Source() FrameSource {
	return s.source
}

// Capture pulls the next frame, runs it through the processing pipeline
// and appends the result. Fails once the quota is reached.
func (s *Session) Capture(ctx context.Context) (Photo, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Photo{}, appErrors.ErrSessionClosed
	}
	if len(s.photos) >= s.Type.Quota() {
		s.mu.Unlock()
		return Photo{}, appErrors.ErrQuotaReached
	}
	s.mu.Unlock()

	frame, err := s.source.NextFrame(ctx)
	if err != nil {
		return Photo{}, err
	}

	takenAt := s.now()
	data, err := processFrame(frame, takenAt, s.tracker.OverlayLines())
	if err != nil {
		return Photo{}, err
	}

	photo := Photo{Data: data, TakenAt: takenAt}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Photo{}, appErrors.ErrSessionClosed
	}
	if len(s.photos) >= s.Type.Quota() {
		return Photo{}, appErrors.ErrQuotaReached
	}
	s.photos = append(s.photos, photo)
	return photo, nil
}

// DeletePhoto removes the photo at index, shifting later photos down.
func (s *Session) DeletePhoto(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return appErrors.ErrSessionClosed
	}
	if index < 0 || index >= len(s.photos) {
		return appErrors.ErrNotFound.WithMessage("photo index out of range")
	}
	s.photos = append(s.photos[:index], s.photos[index+1:]...)
	return nil
}

// Photos returns a copy of the captured photos in capture order.
func (s *Session) Photos() []Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

// Closed reports whether the session has been shut down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops the tracker and releases the camera. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.tracker.Stop()
	return s.source.Close()
}

// processFrame center-crops the frame to 4:3, scales it to the output
// resolution and burns the timestamp and location block into the corner.
func processFrame(src image.Image, takenAt time.Time, location []string) ([]byte, error) {
	out := image.NewRGBA(image.Rect(0, 0, outputWidth, outputHeight))
	xdraw.CatmullRom.Scale(out, out.Bounds(), src, centerCrop4x3(src.Bounds()), xdraw.Over, nil)
	burnOverlay(out, append([]string{timestampLine(takenAt)}, location...))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

// centerCrop4x3 returns the largest centered 4:3 rectangle inside b.
func centerCrop4x3(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	cw, ch := w, h
	if w*3 >= h*4 {
		cw = h * 4 / 3
	} else {
		ch = w * 3 / 4
	}
	x0 := b.Min.X + (w-cw)/2
	y0 := b.Min.Y + (h-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}
