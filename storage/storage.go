package storage

import (
	"errors"

	"github.com/ipld/go-ipld-prime/storage"
)

var ErrNotFound = errors.New("key not found")

// Storage is a key value store for raw blocks and store metadata.
type Storage interface {
	storage.ReadableStorage
	storage.WritableStorage
}
