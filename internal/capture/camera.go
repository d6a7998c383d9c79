package capture

import (
	"context"
	"image"
	"sync"

	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

// Constraints narrows which camera a provider should open.
type Constraints struct {
	FacingRear bool
	Width      int
	Height     int
}

// FrameSource yields frames from an opened camera.
type FrameSource interface {
	NextFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// CameraProvider opens a frame source for a capture device.
type CameraProvider interface {
	Open(ctx context.Context, c Constraints) (FrameSource, error)
}

// OpenPreferRear asks the provider for a rear-facing camera and falls
// back to an unconstrained open when the device has none.
func OpenPreferRear(ctx context.Context, provider CameraProvider) (FrameSource, error) {
	source, err := provider.Open(ctx, Constraints{FacingRear: true})
	if err == nil {
		return source, nil
	}
	source, err = provider.Open(ctx, Constraints{})
	if err != nil {
		return nil, appErrors.ErrCameraUnavailable.Wrap(err)
	}
	return source, nil
}

// PushFrameSource is a FrameSource fed over HTTP. Field kiosks post each
// frame they want captured; NextFrame hands the most recent one to the
// session pipeline.
type PushFrameSource struct {
	mu     sync.Mutex
	frames chan image.Image
	closed bool
}

// NewPushFrameSource builds a source holding at most one pending frame.
func NewPushFrameSource() *PushFrameSource {
	return &PushFrameSource{frames: make(chan image.Image, 1)}
}

// Push queues a frame, replacing any frame not yet consumed.
func (s *PushFrameSource) Push(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return appErrors.ErrSessionClosed
	}
	select {
	case <-s.frames:
	default:
	}
	s.frames <- img
	return nil
}

// NextFrame blocks until a frame is pushed or the context ends.
func (s *PushFrameSource) NextFrame(ctx context.Context) (image.Image, error) {
	select {
	case img, ok := <-s.frames:
		if !ok {
			return nil, appErrors.ErrSessionClosed
		}
		return img, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases the source. Safe to call more than once.
func (s *PushFrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.frames)
	}
	return nil
}

// PushProvider opens push-fed frame sources regardless of constraints.
type PushProvider struct{}

// Open satisfies CameraProvider.
func (PushProvider) Open(ctx context.Context, c Constraints) (FrameSource, error) {
	return NewPushFrameSource(), nil
}
