package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"skinmuse/internal/models"
)

// FileSink пишет события построчно в JSON: {"timestamp","type","meta","message"}.
type FileSink struct {
	mu     sync.Mutex
	out    *errWriter
	log    zerolog.Logger
	closer io.Closer
}

// errWriter запоминает ошибку записи: zerolog сам её не возвращает.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	e.err = err
	return n, err
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("security log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("security log open: %w", err)
	}
	s := NewWriterSink(f)
	s.closer = f
	return s, nil
}

func NewWriterSink(w io.Writer) *FileSink {
	out := &errWriter{w: w}
	return &FileSink{out: out, log: zerolog.New(out)}
}

func (s *FileSink) Write(ev models.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out.err = nil
	e := s.log.Log().
		Time("timestamp", ev.Timestamp).
		Str("type", ev.Type)
	if len(ev.Meta) > 0 {
		e = e.Interface("meta", ev.Meta)
	}
	e.Msg(ev.Message)
	if s.out.err != nil {
		return fmt.Errorf("security log write: %w", s.out.err)
	}
	return nil
}

func (s *FileSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
