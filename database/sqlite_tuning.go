package database

import (
	"fmt"
	"mortify/config"
	"net/url"
	"strings"
)

type sqlitePoolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// sqliteTuning is the validated subset of config.Config that shapes the SQLite connection.
// Empty journalMode/synchronous mean "leave the driver default".
type sqliteTuning struct {
	pragmas     bool
	busyTimeout int
	journalMode string
	synchronous string
	foreignKeys bool
	pool        sqlitePoolConfig
}

func sqliteTuningFromConfig(cfg *config.Config) sqliteTuning {
	return sqliteTuning{
		pragmas:     cfg.SQLitePragmasEnabled,
		busyTimeout: cfg.SQLiteBusyTimeoutMS,
		journalMode: normalizeSQLiteJournalMode(cfg.SQLiteJournalMode),
		synchronous: normalizeSQLiteSynchronous(cfg.SQLiteSynchronous),
		foreignKeys: cfg.SQLiteForeignKeys,
		pool: sanitizeSQLitePoolConfig(sqlitePoolConfig{
			maxOpenConns: cfg.SQLiteMaxOpenConns,
			maxIdleConns: cfg.SQLiteMaxIdleConns,
			maxIdleSec:   cfg.SQLiteConnMaxIdleSec,
			maxLifeSec:   cfg.SQLiteConnMaxLifeSec,
		}),
	}
}

// sanitizeSQLitePoolConfig keeps at least one open connection, clamps idle
// connections to [0, maxOpenConns] and forbids negative durations.
func sanitizeSQLitePoolConfig(cfg sqlitePoolConfig) sqlitePoolConfig {
	cfg.maxOpenConns = max(cfg.maxOpenConns, 1)
	cfg.maxIdleConns = min(max(cfg.maxIdleConns, 0), cfg.maxOpenConns)
	cfg.maxIdleSec = max(cfg.maxIdleSec, 0)
	cfg.maxLifeSec = max(cfg.maxLifeSec, 0)
	return cfg
}

// pragmaArgs returns the `_pragma` values understood by the glebarez driver.
func (t sqliteTuning) pragmaArgs() []string {
	if !t.pragmas {
		return nil
	}
	var args []string
	if t.busyTimeout > 0 {
		args = append(args, fmt.Sprintf("busy_timeout(%d)", t.busyTimeout))
	}
	if t.journalMode != "" {
		args = append(args, fmt.Sprintf("journal_mode(%s)", t.journalMode))
	}
	if t.synchronous != "" {
		args = append(args, fmt.Sprintf("synchronous(%s)", t.synchronous))
	}
	if t.foreignKeys {
		args = append(args, "foreign_keys(1)")
	} else {
		args = append(args, "foreign_keys(0)")
	}
	return args
}

// pragmaStatements mirrors pragmaArgs as plain PRAGMA statements.
func (t sqliteTuning) pragmaStatements() []string {
	args := t.pragmaArgs()
	stmts := make([]string, 0, len(args))
	for _, arg := range args {
		name, value, _ := strings.Cut(strings.TrimSuffix(arg, ")"), "(")
		stmts = append(stmts, "PRAGMA "+name+" = "+value)
	}
	return stmts
}

// dsn appends the PRAGMA parameters to dbPath, preserving any query it already carries.
func (t sqliteTuning) dsn(dbPath string) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")

	query, _ := url.ParseQuery(rawQuery)
	for _, arg := range t.pragmaArgs() {
		query.Add("_pragma", arg)
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// normalizeSQLiteJournalMode returns the uppercase journal mode, or "" when it is not one SQLite accepts.
func normalizeSQLiteJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// normalizeSQLiteSynchronous returns the uppercase synchronous level, or "" when invalid.
func normalizeSQLiteSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}
