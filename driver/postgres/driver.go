package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leandroluk/golemfilter/core"
)

//region PostgresDriver

// PostgresDriver runs queries on a pgx connection pool.
type PostgresDriver struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ core.Driver = (*PostgresDriver)(nil)

// Option configures a PostgresDriver.
type Option func(*PostgresDriver)

// WithLogger sets the logger SQL statements are logged to at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(driver *PostgresDriver) { driver.logger = logger }
}

func NewPostgresDriver(ctx context.Context, connString string, opts ...Option) (*PostgresDriver, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	driver := &PostgresDriver{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(driver)
	}
	return driver, nil
}

func (driver *PostgresDriver) query(ctx context.Context, sqlQuery string, args ...any) (pgx.Rows, error) {
	driver.logger.DebugContext(ctx, "postgres query", "sql", sqlQuery, "args", len(args))
	return querierFrom(ctx, driver.pool).Query(ctx, sqlQuery, args...)
}

func (driver *PostgresDriver) queryRow(ctx context.Context, sqlQuery string, args ...any) pgx.Row {
	driver.logger.DebugContext(ctx, "postgres query", "sql", sqlQuery, "args", len(args))
	return querierFrom(ctx, driver.pool).QueryRow(ctx, sqlQuery, args...)
}

func (driver *PostgresDriver) Connect(ctx context.Context) error {
	return driver.pool.Ping(ctx)
}

func (driver *PostgresDriver) Ping(ctx context.Context) error {
	return driver.pool.Ping(ctx)
}

func (driver *PostgresDriver) Close(ctx context.Context) error {
	driver.pool.Close()
	return nil
}

func (driver *PostgresDriver) Transaction(ctx context.Context) (core.Transaction, error) {
	tx, err := driver.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	return &postgresTransaction{transaction: tx}, nil
}

// Find returns the rows of the first entity of query, keyed by column name.
func (driver *PostgresDriver) Find(ctx context.Context, query *core.Query) ([]map[string]any, error) {
	sqlQuery, argList, err := BuildSelect(query)
	if err != nil {
		return nil, err
	}

	rowList, err := driver.query(ctx, sqlQuery, argList...)
	if err != nil {
		return nil, err
	}
	defer rowList.Close()

	columnDescriptionList := rowList.FieldDescriptions()
	var resultList []map[string]any

	for rowList.Next() {
		valueList, err := rowList.Values()
		if err != nil {
			return nil, err
		}
		rowMap := make(map[string]any, len(columnDescriptionList))
		for i, col := range columnDescriptionList {
			rowMap[col.Name] = valueList[i]
		}
		resultList = append(resultList, rowMap)
	}
	if err := rowList.Err(); err != nil {
		return nil, err
	}
	return resultList, nil
}

// Count returns the number of rows matching query.
func (driver *PostgresDriver) Count(ctx context.Context, query *core.Query) (int64, error) {
	sqlQuery, argList, err := BuildCount(query)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := driver.queryRow(ctx, sqlQuery, argList...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

//endregion
