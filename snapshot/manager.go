package snapshot

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/filearray/blobstore"
)

// Manager moves snapshots through a blobstore.BlobStore.
type Manager struct {
	store blobstore.BlobStore
	opts  []Option
}

// NewManager creates a Manager. The given options apply to every save and
// restore it performs.
func NewManager(store blobstore.BlobStore, opts ...Option) *Manager {
	return &Manager{store: store, opts: opts}
}

// Save snapshots src into the blob with the given name.
func (m *Manager) Save(ctx context.Context, name string, src Source) error {
	w, err := m.store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("snapshot: create blob %q: %w", name, err)
	}

	if err := Save(ctx, w, src, m.opts...); err != nil {
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("snapshot: finalize blob %q: %w", name, err)
	}

	return nil
}

// Restore reads the named snapshot blob and writes its payload to path.
func (m *Manager) Restore(ctx context.Context, name, path string) (Header, error) {
	blob, err := m.store.Open(ctx, name)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: open blob %q: %w", name, err)
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: read blob %q: %w", name, err)
	}
	defer rc.Close()

	return Restore(ctx, rc, path, m.opts...)
}

// SaveAll snapshots every source concurrently, at most parallel at a time.
// The blob name is the map key. The first error cancels the remaining saves.
func (m *Manager) SaveAll(ctx context.Context, sources map[string]Source, parallel int) error {
	if parallel <= 0 {
		parallel = 1
	}

	sem := semaphore.NewWeighted(int64(parallel))

	g, ctx := errgroup.WithContext(ctx)
	for name, src := range sources {
		if err := sem.Acquire(ctx, 1); err != nil {
			// A failed save already canceled the group; prefer its error.
			if waitErr := g.Wait(); waitErr != nil {
				return waitErr
			}
			return err
		}

		g.Go(func() error {
			defer sem.Release(1)
			return m.Save(ctx, name, src)
		})
	}

	return g.Wait()
}
