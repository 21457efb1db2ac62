//go:build linux || darwin || freebsd

package mmdbkit

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile opens path read-only and maps it into memory with
// golang.org/x/sys/unix, returning the mapped bytes and a release
// function that unmaps and closes the file. Empty files are read
// directly rather than mapped, since mmap of a zero-length region is
// rejected on most platforms.
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if st.Size() == 0 {
		f.Close()
		return nil, func() {}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return readFallback(path)
	}

	release := func() {
		unix.Munmap(data)
		f.Close()
	}

	return data, release, nil
}
