package mmdbkit

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ReadGZ reads a gzip-compressed MMDB file, transparently decompressing
// it before handing the result to FromBytes. Distributing a compressed
// database is common enough (MaxMind's own GeoLite2 downloads ship this
// way) that callers shouldn't have to wire up their own gzip.Reader.
func ReadGZ(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(KindIO, err, "opening %s", path)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, wrapError(KindIO, err, "opening gzip stream in %s", path)
	}
	defer zr.Close()

	buf, err := io.ReadAll(zr)
	if err != nil {
		return nil, wrapError(KindIO, err, "decompressing %s", path)
	}

	return FromBytes(buf)
}

// WriteGZ serializes db and writes it to path as a gzip-compressed
// stream.
func (db *Database) WriteGZ(path string) error {
	buf, err := db.serialize()
	if err != nil {
		return err
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(buf); err != nil {
		return wrapError(KindIO, err, "compressing %s", path)
	}
	if err := zw.Close(); err != nil {
		return wrapError(KindIO, err, "closing gzip stream for %s", path)
	}

	if err := os.WriteFile(path, compressed.Bytes(), 0o644); err != nil {
		return wrapError(KindIO, err, "writing %s", path)
	}
	return nil
}
