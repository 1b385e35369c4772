package assetbatch

import (
	"fmt"
	"strings"
)

// AssetError is the failure of a single asset of the batch.
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// MultiError aggregates the failed assets of a batch.
type MultiError []*AssetError

func (m MultiError) Error() string {
	messages := make([]string, 0, len(m))
	for _, err := range m {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("%d asset(s) failed to upload:\n%s", len(m), strings.Join(messages, "\n"))
}

// Unwrap makes errors.Is and errors.As look into every failed asset.
func (m MultiError) Unwrap() []error {
	errs := make([]error, 0, len(m))
	for _, err := range m {
		errs = append(errs, err)
	}
	return errs
}
