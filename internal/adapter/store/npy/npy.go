// Package npy reads and writes numpy .npy array files in C order.
package npy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/sbinet/npyio"

	"go.ngs.io/ncmodel/internal/domain"
)

// kinds maps the type part of an npy descr, without its byte order mark,
// onto an element type.
var kinds = map[string]domain.DType{
	"i1": domain.Int8,
	"u1": domain.Uint8,
	"i2": domain.Int16,
	"u2": domain.Uint16,
	"i4": domain.Int32,
	"u4": domain.Uint32,
	"i8": domain.Int64,
	"u8": domain.Uint64,
	"f4": domain.Float32,
	"f8": domain.Float64,
}

// Write encodes a, keeping its shape in the header.
func Write(w io.Writer, a *domain.Array) error {
	if err := npyio.Write(w, shaped(a)); err != nil {
		return fmt.Errorf("failed to write npy data: %w", err)
	}
	return nil
}

// shaped returns the data of a as a Go array whose type carries the shape,
// e.g. [2][3]float32 for a 2 x 3 array, or the single value of a rank-0
// array.
func shaped(a *domain.Array) any {
	flat := reflect.ValueOf(a.Data())
	shape := a.Shape()
	if len(shape) == 0 {
		return flat.Index(0).Interface()
	}

	elem := flat.Type().Elem()
	t := elem
	for i := len(shape) - 1; i >= 0; i-- {
		t = reflect.ArrayOf(shape[i], t)
	}
	nd := reflect.New(t)
	// Nested arrays are contiguous, so the flat buffer copies straight in.
	view := reflect.NewAt(reflect.ArrayOf(flat.Len(), elem), nd.UnsafePointer()).Elem()
	reflect.Copy(view, flat)
	return nd.Elem().Interface()
}

// Read decodes a complete .npy stream.
func Read(r io.Reader) (*domain.Array, error) {
	return read(r, -1)
}

// read decodes r, refusing headers that describe more than limit data
// bytes when limit is not negative.
func read(r io.Reader, limit int64) (*domain.Array, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}
	descr := nr.Header.Descr
	if descr.Fortran {
		return nil, errors.New("fortran-ordered npy arrays are not supported")
	}
	dt, ok := kinds[strings.TrimLeft(descr.Type, "<>|=")]
	if !ok {
		return nil, fmt.Errorf("unsupported npy dtype %q", descr.Type)
	}

	n, err := domain.ElementCount(descr.Shape)
	if err != nil {
		return nil, fmt.Errorf("invalid npy shape: %w", err)
	}
	if limit >= 0 && int64(n) > limit/int64(dt.Size()) {
		return nil, fmt.Errorf("npy shape %v needs more than the %d bytes in the file", descr.Shape, limit)
	}

	a, err := domain.NewArray(dt, descr.Shape...)
	if err != nil {
		return nil, err
	}
	buf := reflect.New(reflect.TypeOf(a.Data()))
	buf.Elem().Set(reflect.ValueOf(a.Data()))
	if err := nr.Read(buf.Interface()); err != nil {
		return nil, fmt.Errorf("failed to read npy data: %w", err)
	}
	return domain.FromSlice(buf.Elem().Interface(), descr.Shape...)
}

// ReadFile reads an .npy file. A missing file is reported as
// domain.ErrNotFound and an undecodable one as domain.ErrMalformedInput.
func ReadFile(path string) (*domain.Array, error) {
	//nolint:gosec // G304: path is a model base chosen by the operator.
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound(path, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	a, err := read(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, domain.Malformed(path, err)
	}
	return a, nil
}

// WriteFile writes a to path, replacing any existing file.
func WriteFile(path string, a *domain.Array) error {
	//nolint:gosec // G304: path is a model base chosen by the operator.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Write(w, a); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
