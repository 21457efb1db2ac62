package mmdbkit

import "os"

// readFallback reads an entire file into a freshly allocated slice. It
// backs mapFile on platforms (or in failure cases) where a real memory
// mapping isn't available; the release function it returns is a no-op
// since there is nothing to unmap.
func readFallback(path string) ([]byte, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}
