package resolve

import (
	"context"
	"sync"

	"github.com/svetlov/medialog/internal/models"
)

// Binding is one view's slot for a resolved handle. It guarantees that for
// every handle it publishes exactly one release happens when the view's
// interest moves on, and that a resolution finishing after the subject has
// already changed is discarded instead of published.
type Binding struct {
	r *Resolver

	mu  sync.Mutex
	gen uint64
	h   *Handle
}

func NewBinding(r *Resolver) *Binding {
	return &Binding{r: r}
}

// Set points the binding at ref: the previous handle is released and a new
// one resolved. If another Set (or Clear) supersedes this call while the
// resolution is in flight, the late result is released immediately and
// (nil, nil) is returned; the binding's published state is never mutated by
// a superseded resolution.
func (b *Binding) Set(ctx context.Context, ref models.MediaRef) (*Handle, error) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	prev := b.h
	b.h = nil
	b.mu.Unlock()

	prev.Release()

	h, err := b.r.Resolve(ctx, ref)

	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		h.Release()
		return nil, nil
	}
	b.h = h
	b.mu.Unlock()
	return h, err
}

// Current returns the published handle, or nil when the subject is
// unresolved or unavailable.
func (b *Binding) Current() *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.h
}

// Clear releases the current handle, e.g. on view unmount.
func (b *Binding) Clear() {
	b.mu.Lock()
	b.gen++
	h := b.h
	b.h = nil
	b.mu.Unlock()

	h.Release()
}
