package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache caches, such as the channel history, live on the current backend.
// Tests swapping in a MemMapFs therefore never touch the disk through a cache.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
