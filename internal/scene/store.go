package scene

import "sync"

// Store is the ordered collection of meshes drawn each frame. Background
// workers only append; the render thread reads snapshots.
type Store struct {
	mu     sync.Mutex
	meshes []*Mesh
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds m at the end of the draw order. Ownership of m passes to the
// store; the caller must not touch it afterwards.
func (s *Store) Append(m *Mesh) {
	s.mu.Lock()
	s.meshes = append(s.meshes, m)
	s.mu.Unlock()
}

// Len returns the number of stored meshes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.meshes)
}

// Snapshot returns the meshes in store order. The slice is a copy; the
// meshes are shared.
func (s *Store) Snapshot() []*Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

// Clear removes every mesh and releases its GPU buffers. Only the render
// thread may call it, after the GPU is idle.
func (s *Store) Clear() {
	s.mu.Lock()
	meshes := s.meshes
	s.meshes = nil
	s.mu.Unlock()

	for _, m := range meshes {
		m.Release()
	}
}
