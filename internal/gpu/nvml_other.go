//go:build !linux || !cgo

package gpu

import "codeberg.org/mutker/hostctl/internal/errors"

type unsupportedController struct{}

func newController() nvmlController {
	return unsupportedController{}
}

func (unsupportedController) Initialize() error {
	return errors.New().New(ErrUnsupported)
}

func (unsupportedController) Shutdown() error { return nil }

func (unsupportedController) GetDeviceCount() (int, error) { return 0, nil }

func (unsupportedController) Utilization(int) (uint32, error) {
	return 0, errors.New().New(ErrUnsupported)
}

func (unsupportedController) Temperature(int) (uint32, error) {
	return 0, errors.New().New(ErrUnsupported)
}
