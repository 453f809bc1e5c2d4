package hal

// stubFlash stands in when no flash image is configured.
type stubFlash struct{}

func (stubFlash) SizeBytes() uint32                   { return 0 }
func (stubFlash) EraseBlockBytes() uint32             { return 0 }
func (stubFlash) ReadAt([]byte, uint32) (int, error)  { return 0, ErrNotImplemented }
func (stubFlash) WriteAt([]byte, uint32) (int, error) { return 0, ErrNotImplemented }
func (stubFlash) Erase(uint32, uint32) error          { return ErrNotImplemented }
