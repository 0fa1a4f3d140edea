package meshconv

import (
	"errors"
	"fmt"
)

// Fatal conversion errors. Returned errors wrap one of these.
var (
	ErrSkinMismatch = errors.New("skin vertex count does not match mesh")
	ErrNoBones      = errors.New("skin binding has no bones")
	ErrBoneRange    = errors.New("bone id outside the bone palette")
	ErrCapacity     = errors.New("span exceeds buffer capacity after dicing")
)

// ConversionError reports a fatal condition that abandoned one mesh.
type ConversionError struct {
	Mesh string
	Code Code
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %q: %v", e.Mesh, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
