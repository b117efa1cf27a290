package texture

import (
	"context"
	"errors"
	"image"
)

// ErrNotFound is reported by a Pending whose resolver had no such texture.
var ErrNotFound = errors.New("texture: not found")

// Pending is the result of a texture load running in the background.
// It satisfies render.Texture: Ready turns true once the image decoded.
type Pending struct {
	name string
	done chan struct{}
	img  *image.NRGBA
	err  error
}

// LoadAsync starts decoding path on its own goroutine.
func LoadAsync(path string) *Pending {
	return start(path, func() (*image.NRGBA, error) { return LoadTexture(path) })
}

// ResolveAsync starts resolving name through r on its own goroutine.
func ResolveAsync(r Resolver, name string) *Pending {
	return start(name, func() (*image.NRGBA, error) {
		img := r.Resolve(name)
		if img == nil {
			return nil, ErrNotFound
		}
		return img, nil
	})
}

// Loaded wraps an already decoded image.
func Loaded(name string, img *image.NRGBA) *Pending {
	p := &Pending{name: name, done: make(chan struct{}), img: img}
	close(p.done)
	return p
}

func start(name string, load func() (*image.NRGBA, error)) *Pending {
	p := &Pending{name: name, done: make(chan struct{})}
	go func() {
		p.img, p.err = load()
		close(p.done)
	}()
	return p
}

// Name returns the path or name the load was started with.
func (p *Pending) Name() string { return p.name }

// Done is closed when loading finished, successfully or not.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Ready reports whether loading finished without error.
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return p.err == nil
	default:
		return false
	}
}

// Err returns the load error once finished, nil before that.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Handle returns the decoded *image.NRGBA, or nil while not ready.
func (p *Pending) Handle() any {
	if !p.Ready() {
		return nil
	}
	return p.img
}

// Wait blocks until loading finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*image.NRGBA, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
