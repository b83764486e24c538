package session

import (
	"errors"
	"io"

	"luxtrail/internal/telemetry"
)

// MultiWriter fans rows out to several writers. Every writer receives every
// row; the errors are joined.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a new MultiWriter. Nil writers are skipped.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Writers returns the wrapped writers.
func (mw *MultiWriter) Writers() []Writer { return mw.writers }

// WriteLocation sends a location row to all writers.
func (mw *MultiWriter) WriteLocation(row telemetry.LocationRow) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.WriteLocation(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteLight sends a light row to all writers.
func (mw *MultiWriter) WriteLight(row telemetry.LightRow) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.WriteLight(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteCheckpoint sends a checkpoint row to all writers.
func (mw *MultiWriter) WriteCheckpoint(row telemetry.CheckpointRow) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.WriteCheckpoint(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that implements io.Closer.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// SetSnapshot forwards fn to writers rendering the session screen.
func (mw *MultiWriter) SetSnapshot(fn func() Screen) {
	for _, w := range mw.writers {
		if s, ok := w.(interface{ SetSnapshot(func() Screen) }); ok {
			s.SetSnapshot(fn)
		}
	}
}

// SetAdminStatus forwards the admin server state to writers showing it.
func (mw *MultiWriter) SetAdminStatus(active bool) {
	for _, w := range mw.writers {
		if s, ok := w.(interface{ SetAdminStatus(bool) }); ok {
			s.SetAdminStatus(active)
		}
	}
}
