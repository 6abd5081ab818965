package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// rotatingLog is the service log file. Start-up shifts earlier runs to
// path.1 .. path.N; Reopen picks up a file moved away by an external rotator.
type rotatingLog struct {
	path    string
	backups int

	mu sync.Mutex
	f  *os.File
}

// setupLogging rotates existing logs, opens a fresh file and points the
// standard logger at it. backups below 1 keeps a single history file.
func setupLogging(path string, backups int) (*rotatingLog, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if backups < 1 {
		backups = 1
	}

	l := &rotatingLog{path: path, backups: backups}
	if err := l.rotate(); err != nil {
		return nil, err
	}
	if err := l.open(os.O_TRUNC); err != nil {
		return nil, err
	}
	log.SetOutput(l)
	return l, nil
}

// rotate shifts path.(N-1) to path.N down to path to path.1. The oldest
// history file is dropped.
func (l *rotatingLog) rotate() error {
	_ = os.Remove(l.backupName(l.backups))
	for i := l.backups - 1; i >= 1; i-- {
		if _, err := os.Stat(l.backupName(i)); err == nil {
			if err := os.Rename(l.backupName(i), l.backupName(i+1)); err != nil {
				return fmt.Errorf("failed to rotate %s: %w", l.backupName(i), err)
			}
		}
	}
	if _, err := os.Stat(l.path); err == nil {
		if err := os.Rename(l.path, l.backupName(1)); err != nil {
			return fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}
	return nil
}

func (l *rotatingLog) backupName(n int) string {
	return fmt.Sprintf("%s.%d", l.path, n)
}

func (l *rotatingLog) open(flag int) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|flag, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", l.path, err)
	}
	l.mu.Lock()
	old := l.f
	l.f = f
	l.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Reopen appends to path again, creating it if it was moved away (SIGHUP).
func (l *rotatingLog) Reopen() error {
	return l.open(os.O_APPEND)
}

func (l *rotatingLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return 0, io.ErrClosedPipe
	}
	return l.f.Write(p)
}

// Close closes the current file.
func (l *rotatingLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
