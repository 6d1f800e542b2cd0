package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/random"

	_ "embed"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed init.sql
var initialiseSchemaScript string

// Database holds two connection pools over the same SQLite file, one for
// read/write operations and one for read-only operations. This is a best
// practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
}

// NewDatabase opens the connection pools and initialises the schema.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(url string) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
	)

	// For in-memory databases, we need shared cache mode so that both pools access the same data.
	//
	// Parallel tests each need a distinct database name to avoid sharing data.
	// See https://www.sqlite.org/inmemorydb.html.
	inMemoryConfig := ""
	if strings.Contains(url, ":memory:") {
		var randomID string
		if randomID, err = random.Letters(20); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		url = randomID
		inMemoryConfig = "&mode=memory&cache=shared"
	}
	commonConfig := "_journal_mode=wal&_busy_timeout=5000&_synchronous=normal&_foreign_keys=on"

	readWriteConfig := fmt.Sprintf("file:%s?_txlock=immediate&%s%s", url, commonConfig, inMemoryConfig)
	if readWriteDB, err = sqlx.Connect("sqlite3", readWriteConfig); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}

	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	if _, err = readWriteDB.Exec(initialiseSchemaScript); err != nil {
		return nil, errors.Wrap(err, "initialise schema")
	}

	readConfig := fmt.Sprintf("file:%s?_txlock=deferred&_query_only=true&%s%s", url, commonConfig, inMemoryConfig)
	if readDB, err = sqlx.Connect("sqlite3", readConfig); err != nil {
		return nil, errors.Wrap(err, "open read database")
	}

	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
	}, nil
}

// Close closes both connection pools.
func (d *Database) Close(logger *slog.Logger) {
	if err := d.ReadOnly.Close(); err != nil {
		logger.Error("close read-only pool", errors.SlogError(err))
	}
	if err := d.ReadWrite.Close(); err != nil {
		logger.Error("close read-write pool", errors.SlogError(err))
	}
}
