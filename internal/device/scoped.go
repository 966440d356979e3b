package device

import (
	"errors"

	"github.com/markusressel/tcoracle/internal/ui"
)

// Scoped runs fn and restores every path it touched afterwards,
// no matter whether fn succeeds, fails or panics
func Scoped(injector Injector, fn func(injector Injector) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if restoreErr := injector.RestoreAll(); restoreErr != nil {
				ui.Error("Unable to restore mocked paths: %v", restoreErr)
			}
			panic(r)
		}
		if restoreErr := injector.RestoreAll(); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
	}()
	return fn(injector)
}
