// Package storage binds the sorted containers to an embedded SQLite database.
//
// It opens a named resource (Memory for an ephemeral store, a file path
// otherwise), creates the uniquely indexed table a container needs, and runs
// parameterized statements one at a time, each inside its own transaction.
// Every statement is logged at debug level, counted, timed and traced.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/amp-labs/litecollections/logger"
	"github.com/amp-labs/litecollections/value"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

// Memory is the reserved resource name for an ephemeral, process-local store.
// Each resource opened with it is private, even when opened twice.
const Memory = ":memory:"

const (
	driverName = "sqlite3"
	tracerName = "github.com/amp-labs/litecollections/storage"
)

// Row is one result row, one Value per selected column.
type Row []value.Value

// Rows is a fully read statement result.
type Rows []Row

var errNotScalar = errors.New("result is not a single value")

// Scalar returns the only column of the only row, as produced by COUNT(*).
func (r Rows) Scalar() (value.Value, error) {
	if len(r) != 1 || len(r[0]) != 1 {
		return value.NullValue(), fmt.Errorf("%w: %d rows", errNotScalar, len(r))
	}

	return r[0][0], nil
}

// Column returns the i-th column of every row.
func (r Rows) Column(i int) []value.Value {
	out := make([]value.Value, len(r))
	for n, row := range r {
		out[n] = row[i]
	}

	return out
}

// DB is an opened storage resource.
type DB struct {
	db     *sql.DB
	opts   Options
	tracer trace.Tracer
	closed atomic.Bool
}

// Open opens (creating if needed) the resource selected by the options.
// The caller must Close it.
func Open(ctx context.Context, opts ...Option) (*DB, error) {
	options := DefaultOptions(ctx)
	for _, opt := range opts {
		opt(&options)
	}

	db, err := sql.Open(driverName, dsn(options.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite; %w", err)
	}

	// One connection per resource: statements are serialized, and the
	// in-memory database lives exactly as long as this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	for _, cmd := range options.pragmas() {
		if _, err := db.ExecContext(ctx, cmd); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("failed to configure connection with %s; %w", cmd, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to open %s; %w", options.Path, err)
	}

	d := &DB{
		db:     db,
		opts:   options,
		tracer: options.TracerProvider.Tracer(tracerName),
	}

	d.log(ctx).Debug("opened storage", "path", options.Path)

	return d, nil
}

// dsn maps a resource name to a driver connection string. Memory gets a
// unique shared-cache name so that each opened store is independent. File
// paths are percent-escaped so '?', '#' and '%' stay part of the name.
// See https://www.sqlite.org/uri.html
func dsn(path string) string {
	if path == Memory {
		return "file:litecollections-" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	return "file:" + (&url.URL{Path: path}).EscapedPath()
}

// Name returns the resource name the DB was opened with.
func (d *DB) Name() string {
	return d.opts.Path
}

// IsMemory reports whether the DB is an ephemeral in-memory store.
func (d *DB) IsMemory() bool {
	return d.opts.Path == Memory
}

// PageSize is the number of rows a lazy traversal should fetch per statement.
func (d *DB) PageSize() int {
	return d.opts.PageSize
}

// Schema describes a container table: a unique, indexed key column and an
// optional value column. Columns are declared without a type, so the engine
// stores every bound value as-is instead of coercing it.
type Schema struct {
	Table string
	Key   string
	Value string
}

func (s Schema) createTable() string {
	cols := s.Key + " UNIQUE"
	if s.Value != "" {
		cols += ", " + s.Value
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.Table, cols)
}

func (s Schema) createIndex() string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", s.Table, s.Key, s.Table, s.Key)
}

// EnsureTable creates the table and its unique key index if they don't exist.
// It is safe to call on an already initialized resource.
func (d *DB) EnsureTable(ctx context.Context, schema Schema) error {
	if _, err := d.Execute(ctx, schema.createTable()); err != nil {
		return fmt.Errorf("failed to create %s table; %w", schema.Table, err)
	}

	if _, err := d.Execute(ctx, schema.createIndex()); err != nil {
		return fmt.Errorf("failed to create %s index; %w", schema.Table, err)
	}

	return nil
}

// Execute runs one statement inside its own transaction and returns every
// row it produced. The transaction commits only after the rows are read and
// rolls back on any failure. Cancelling ctx does not interrupt a statement
// that has been issued. Errors from the driver are returned unchanged.
func (d *DB) Execute(ctx context.Context, query string, args ...any) (Rows, error) {
	ctx = context.WithoutCancel(ctx)

	ctx, span := d.tracer.Start(ctx, "storage.Execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.name", d.opts.Path),
			attribute.String("db.statement", query),
			attribute.Int("db.params", len(args)),
		))
	defer span.End()

	d.log(ctx).Debug("executing statement", "query", query, "params", args)

	start := time.Now()
	rows, err := d.run(ctx, query, args)

	statementDuration.Observe(time.Since(start).Seconds())
	statementsCounter.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows", len(rows)))
	span.SetStatus(codes.Ok, "ok")

	return rows, nil
}

func (d *DB) run(ctx context.Context, query string, args []any) (Rows, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var succeeded bool

	defer func() {
		if succeeded {
			return
		}

		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			d.log(ctx).Warn("failed to rollback", "query", query, "error", err)
		}
	}()

	cursor, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	rows, err := readAll(cursor)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	succeeded = true

	return rows, nil
}

func readAll(cursor *sql.Rows) (rows Rows, err error) {
	defer func() {
		if closeErr := cursor.Close(); err == nil {
			err = closeErr
		}
	}()

	cols, err := cursor.Columns()
	if err != nil {
		return nil, err
	}

	for cursor.Next() {
		row := make(Row, len(cols))
		dest := make([]any, len(cols))

		for i := range row {
			dest[i] = &row[i]
		}

		if err := cursor.Scan(dest...); err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, cursor.Err()
}

// Close releases the resource. Closing an in-memory store discards it.
// Further calls are no-ops.
func (d *DB) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	d.log(context.Background()).Debug("closing storage", "path", d.opts.Path)

	return d.db.Close()
}

func (d *DB) log(ctx context.Context) *slog.Logger {
	if d.opts.Logger != nil {
		ctx = logger.WithLogger(ctx, d.opts.Logger)
	}

	return logger.Get(ctx).With("storage", d.opts.Path)
}
