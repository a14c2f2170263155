package gpu

// Reader reads live GPU metrics from the vendor management library.
type Reader interface {
	// Available reports whether the library loaded and a device exists.
	Available() bool
	Utilization() (float64, error)
	Temperature() (float64, error)
	Close() error
}

// nvmlController abstracts NVML operations for testing
type nvmlController interface {
	Initialize() error
	Shutdown() error
	GetDeviceCount() (int, error)
	Utilization(index int) (uint32, error)
	Temperature(index int) (uint32, error)
}
