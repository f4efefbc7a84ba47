package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/pastemark/pastemark/core/errors"
	"github.com/pastemark/pastemark/core/paste"
)

func sampleBundle() *Bundle {
	return &Bundle{
		Document: "<p>The quick brown fox</p>",
		Events: []paste.Event{
			{Text: "quick brown", StartIndex: 7, EndIndex: 18, Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.tar.gz")
	in := sampleBundle()

	if err := Write(path, in); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if out.Document != in.Document {
		t.Errorf("Document = %q, want %q", out.Document, in.Document)
	}
	if len(out.Events) != 1 {
		t.Fatalf("len(Events) = %d, want 1", len(out.Events))
	}
	if out.Events[0].Text != "quick brown" {
		t.Errorf("Events[0].Text = %q, want %q", out.Events[0].Text, "quick brown")
	}
	if out.Events[0].StartIndex != 7 || out.Events[0].EndIndex != 18 {
		t.Errorf("span = %d..%d, want 7..18", out.Events[0].StartIndex, out.Events[0].EndIndex)
	}
}

func TestReadEntryMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.tar.gz")
	if err := Write(path, sampleBundle()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	_, err := ReadEntry(path, "no-such-file.txt")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ReadEntry() error = %v, want ErrNotFound", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.zip")
	if err := os.WriteFile(path, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReader(path); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("NewReader() error = %v, want ErrInvalidInput", err)
	}
}

func TestReadXZBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.tar.xz")
	writeXZBundle(t, path, sampleBundle())

	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if out.Document != "<p>The quick brown fox</p>" {
		t.Errorf("Document = %q", out.Document)
	}
	if len(out.Events) != 1 {
		t.Errorf("len(Events) = %d, want 1", len(out.Events))
	}
}

func TestIterateStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.tar.gz")
	if err := Write(path, sampleBundle()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	defer r.Close()

	var seen int
	err = r.Iterate(func(header *tar.Header, _ io.Reader) (bool, error) {
		seen++
		return true, nil
	})
	if err != nil {
		t.Fatalf("Iterate() error: %v", err)
	}
	if seen != 1 {
		t.Errorf("visitor called %d times, want 1 (stop requested)", seen)
	}
}

// writeXZBundle builds a .tar.xz bundle directly since Write only emits gzip.
func writeXZBundle(t *testing.T, path string, bundle *Bundle) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	defer xw.Close()

	tw := tar.NewWriter(xw)
	defer tw.Close()

	log := "paste at 2026-03-01T12:00:00Z span 7..18 \"quick brown\"\n"
	for _, entry := range []struct {
		name string
		data string
	}{
		{DocumentEntry, bundle.Document},
		{EventsEntry, log},
	} {
		header := &tar.Header{Name: entry.name, Mode: 0644, Size: int64(len(entry.data))}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(entry.data)); err != nil {
			t.Fatal(err)
		}
	}
}
