// Package archive reads and writes session bundles: compressed tar archives
// holding a document snapshot and its paste log. Bundles are written as
// .tar.gz; both .tar.gz and .tar.xz can be read.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/pastemark/pastemark/core/errors"
	"github.com/pastemark/pastemark/core/paste"
	"github.com/pastemark/pastemark/internal/pastelog"
)

// Entry names inside a session bundle.
const (
	DocumentEntry = "document.html"
	EventsEntry   = "events.pastelog"
)

// Bundle is the portable form of a capture session.
type Bundle struct {
	Document string
	Events   []paste.Event
}

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens a bundle for reading. Compression is detected from the
// path suffix: .tar.xz and .tar.gz are supported.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "xz reader")
		}
		reader = xzr
		decompressor = nil // xz reader doesn't need closing
	case strings.HasSuffix(path, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "gzip reader")
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, errors.NewValidation("path", "unsupported bundle format: "+path)
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Visitor is a callback for iterating bundle entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks all entries in the bundle, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read header")
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// ReadEntry reads a named entry from the bundle at path.
func ReadEntry(path, name string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var content []byte
	err = r.Iterate(func(header *tar.Header, cr io.Reader) (bool, error) {
		// Tolerate a leading directory component.
		entry := header.Name
		if idx := strings.Index(entry, "/"); idx >= 0 {
			entry = entry[idx+1:]
		}
		if entry == name || header.Name == name {
			var err error
			content, err = io.ReadAll(cr)
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.NewNotFound("bundle entry", name)
	}
	return content, nil
}

// Read loads a session bundle from path.
func Read(path string) (*Bundle, error) {
	doc, err := ReadEntry(path, DocumentEntry)
	if err != nil {
		return nil, err
	}
	logData, err := ReadEntry(path, EventsEntry)
	if err != nil {
		return nil, err
	}
	events, err := pastelog.Parse(string(logData))
	if err != nil {
		return nil, err
	}
	return &Bundle{Document: string(doc), Events: events}, nil
}

// Write saves a session bundle as a .tar.gz at path.
func Write(path string, bundle *Bundle) error {
	var log bytes.Buffer
	if err := pastelog.Format(&log, bundle.Events); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	tw := tar.NewWriter(gw)
	defer tw.Close()

	now := time.Now()
	entries := []struct {
		name string
		data []byte
	}{
		{DocumentEntry, []byte(bundle.Document)},
		{EventsEntry, log.Bytes()},
	}
	for _, entry := range entries {
		header := &tar.Header{
			Name:    entry.name,
			Mode:    0644,
			Size:    int64(len(entry.data)),
			ModTime: now,
		}
		if err := tw.WriteHeader(header); err != nil {
			return errors.Wrap(err, "write header")
		}
		if _, err := tw.Write(entry.data); err != nil {
			return errors.Wrap(err, "write entry")
		}
	}
	return nil
}
