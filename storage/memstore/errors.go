package memstore

import (
	"errors"
	"fmt"
)

var errClosed = errors.New("memstore: store is closed")

func errNotFound(path string) error {
	return fmt.Errorf("memstore: no such path %q", path)
}
