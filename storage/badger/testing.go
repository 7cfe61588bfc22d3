package badger

// NewMemoryRepository creates an in-memory snapshot repository for testing.
// Caller must close the backend when done.
func NewMemoryRepository() (*SnapshotRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}
	return NewSnapshotRepository(backend), backend, nil
}
