// Package fileio provides buffered, context-aware text file helpers: appending
// a line and reading a file back line by line.
package fileio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/sync/errgroup"
)

// BufferSize is the size of the read and write buffers.
const BufferSize = 8192

// ErrFileNotFound is wrapped by ReadLines and StreamLines when the file does
// not exist.
var ErrFileNotFound = errors.New("file not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// AppendLine appends data followed by a newline to the file at path,
// creating it if needed.
//
// Parameters:
//   - ctx: Checked before the file is opened.
//   - path: The target file.
//   - data: The line to append, without a trailing newline.
//
// Returns:
//   - error: An error if the file cannot be opened, written or flushed.
func AppendLine(ctx context.Context, path, data string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriterSize(f, BufferSize)
	if _, err := w.WriteString(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// ReadLines calls fn for every line of the file at path, in order, with the
// line terminator ("\n" or "\r\n") removed. A leading UTF-8 byte order mark
// is skipped. Reading stops at the first error returned by fn or when ctx is
// done.
//
// A missing file yields an error wrapping ErrFileNotFound.
func ReadLines(ctx context.Context, path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, BufferSize)
	if head, err := r.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := r.Discard(len(utf8BOM)); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(trimEOL(line)); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
}

// StreamLines is the asynchronous form of ReadLines. A producer goroutine
// sends lines on the first channel and closes it when reading ends; the
// second channel then yields at most one error and is closed. Cancelling ctx
// stops the producer even when nobody receives.
func StreamLines(ctx context.Context, path string) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return ReadLines(gctx, path, func(line string) error {
			select {
			case lines <- line:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	go func() {
		defer close(errc)
		if err := g.Wait(); err != nil {
			errc <- err
		}
	}()
	return lines, errc
}

func trimEOL(line string) string {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}
