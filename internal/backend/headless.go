package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Headless is an in-memory Surface with no real output device: pixmaps are
// plain byte buffers. It exists for tests and for running the core without
// a GPU/X-server-adjacent backend attached, the way the teacher's hydra
// daemon runs its revdial transport against an in-memory stub in tests.
type Headless struct {
	mu      sync.Mutex
	nextID  ID
	pixmaps map[ID]*pixmap

	// Attempts bounds GetImage's retry loop (SPEC_FULL.md §11: the one
	// genuinely fallible, externally-timed core operation). Zero means use
	// the package default of 3.
	Attempts uint

	// Fail, when set, makes GetImage return this error on every attempt —
	// used by tests to exercise the retry path deterministically.
	Fail error
}

type pixmap struct {
	width, height, depth int
	data                 []byte
}

func NewHeadless() *Headless {
	return &Headless{pixmaps: make(map[ID]*pixmap), nextID: 1}
}

func (h *Headless) CreatePixmap(_ context.Context, width, height, depth int) (ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.pixmaps[id] = &pixmap{width: width, height: height, depth: depth, data: make([]byte, width*height*4)}
	return id, nil
}

func (h *Headless) DestroyPixmap(_ context.Context, id ID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pixmaps[id]; !ok {
		return fmt.Errorf("backend: unknown pixmap %d", id)
	}
	delete(h.pixmaps, id)
	return nil
}

func (h *Headless) CopyArea(_ context.Context, src, dst ID, srcRect Rect, dstPoint Point, _ GC) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pixmaps[src]; !ok {
		return fmt.Errorf("backend: unknown source pixmap %d", src)
	}
	if _, ok := h.pixmaps[dst]; !ok {
		return fmt.Errorf("backend: unknown destination pixmap %d", dst)
	}
	return nil
}

func (h *Headless) PutImage(_ context.Context, dst ID, rect Rect, _ byte, bytes []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pixmaps[dst]
	if !ok {
		return fmt.Errorf("backend: unknown pixmap %d", dst)
	}
	copy(p.data, bytes)
	return nil
}

// GetImage reads back pixel data, retrying a bounded number of times since a
// real backend's readback may transiently fail under load (SPEC_FULL.md
// §11: wraps the call in retry.Do instead of a hand-rolled loop).
func (h *Headless) GetImage(ctx context.Context, src ID, rect Rect, _ byte) ([]byte, error) {
	attempts := h.Attempts
	if attempts == 0 {
		attempts = 3
	}
	var out []byte
	err := retry.Do(
		func() error {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.Fail != nil {
				return h.Fail
			}
			p, ok := h.pixmaps[src]
			if !ok {
				return retry.Unrecoverable(fmt.Errorf("backend: unknown pixmap %d", src))
			}
			out = append([]byte{}, p.data...)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(5*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	return out, err
}

func (h *Headless) Present(_ context.Context, _ int, _ Rect) error { return nil }
