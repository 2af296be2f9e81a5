package gotensor

// Device describes one compute device the backend reports as available
// to this Session, mirroring the fields the real TensorFlow Go binding's
// Device type exposes.
type Device struct {
	Name           string
	Type           string
	MemoryLimitBytes int64
}

// ListDevices reports the devices the backend session can place
// operations on.
func (s *Session) ListDevices() ([]Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen("ListDevices"); err != nil {
		return nil, err
	}
	raw, err := s.tfSess.ListDevices()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, len(raw))
	for i, d := range raw {
		devices[i] = Device{Name: d.Name, Type: d.Type, MemoryLimitBytes: d.MemoryLimitBytes}
	}
	return devices, nil
}
