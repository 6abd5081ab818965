package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifySQLiteError_Busy(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_BUSY: database is locked"))
	if !busy || locked {
		t.Fatalf("expected busy=true locked=false, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_Locked(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_LOCKED: database table is locked"))
	if busy || !locked {
		t.Fatalf("expected busy=false locked=true, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_ContextErrorsIgnored(t *testing.T) {
	busy, locked := classifySQLiteError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	if busy || locked {
		t.Fatalf("context errors must not be classified, got busy=%v locked=%v", busy, locked)
	}
}
