package dataprovider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-guesser/internal/logging"
	"github.com/goliatone/go-guesser/pkg/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL reads records from a database/sql handle. Each resource is a table and
// columns become fields in column order. Text columns holding JSON objects or
// arrays are decoded into nested records unless disabled.
type SQL struct {
	db          *sql.DB
	identifiers IdentifierResolver
	tables      map[string]string
	decodeJSON  bool
	logger      logrus.FieldLogger
}

// SQLOption customises a SQL provider.
type SQLOption func(*SQL)

// WithSQLIdentifiers sets how identifier columns are resolved per resource.
func WithSQLIdentifiers(resolver IdentifierResolver) SQLOption {
	return func(s *SQL) {
		s.identifiers = resolver
	}
}

// WithTable maps a resource onto a differently named table.
func WithTable(resource, table string) SQLOption {
	return func(s *SQL) {
		s.tables[resource] = table
	}
}

// WithJSONColumns toggles decoding of JSON text columns. On by default.
func WithJSONColumns(enabled bool) SQLOption {
	return func(s *SQL) {
		s.decodeJSON = enabled
	}
}

// WithSQLLogger sets the logger receiving query entries.
func WithSQLLogger(logger logrus.FieldLogger) SQLOption {
	return func(s *SQL) {
		s.logger = logger
	}
}

// NewSQL builds a provider over db.
func NewSQL(db *sql.DB, opts ...SQLOption) *SQL {
	s := &SQL{
		db:         db,
		tables:     make(map[string]string),
		decodeJSON: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// Resources lists user tables. It relies on sqlite_master and therefore only
// works against SQLite databases.
func (s *SQL) Resources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dataprovider: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("dataprovider: scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetList selects a page of rows.
func (s *SQL) GetList(ctx context.Context, resource string, params ListParams) (ListResult, error) {
	table, err := s.table(resource)
	if err != nil {
		return ListResult{}, err
	}
	where, args, err := whereClause(params.Filter)
	if err != nil {
		return ListResult{}, err
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM " + quote(table) + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("dataprovider: count %s: %w", resource, err)
	}

	query := "SELECT * FROM " + quote(table) + where
	if field := params.Sort.Field; field != "" {
		if !identifierPattern.MatchString(field) {
			return ListResult{}, fmt.Errorf("dataprovider: invalid sort field %q", field)
		}
		query += " ORDER BY " + quote(field) + " " + normalizeOrder(params.Sort.Order)
	}
	start, end := params.Range()
	query += " LIMIT ? OFFSET ?"
	args = append(args, end-start, start)

	records, err := s.query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("dataprovider: list %s: %w", resource, err)
	}
	return ListResult{Records: records, Total: total}, nil
}

// GetOne selects the row whose identifier column equals id.
func (s *SQL) GetOne(ctx context.Context, resource string, id any) (*model.Record, error) {
	table, err := s.table(resource)
	if err != nil {
		return nil, err
	}
	column := identifierField(s.identifiers, resource)
	if !identifierPattern.MatchString(column) {
		return nil, fmt.Errorf("dataprovider: invalid identifier column %q", column)
	}

	query := "SELECT * FROM " + quote(table) + " WHERE " + quote(column) + " = ? LIMIT 1"
	records, err := s.query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("dataprovider: get %s/%v: %w", resource, id, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s/%v", ErrNotFound, resource, id)
	}
	return records[0], nil
}

// GetManyReference lists rows whose Target column equals ID.
func (s *SQL) GetManyReference(ctx context.Context, resource string, params ManyReferenceParams) (ListResult, error) {
	if params.Target == "" {
		return ListResult{}, fmt.Errorf("dataprovider: many reference target is required")
	}
	return s.GetList(ctx, resource, withFilter(params.ListParams, params.Target, params.ID))
}

func (s *SQL) table(resource string) (string, error) {
	table := resource
	if mapped, ok := s.tables[resource]; ok {
		table = mapped
	}
	if !identifierPattern.MatchString(table) {
		return "", fmt.Errorf("%w: invalid table name %q", ErrUnknownResource, table)
	}
	return table, nil
}

func (s *SQL) query(ctx context.Context, query string, args ...any) ([]*model.Record, error) {
	s.logger.WithField("query", query).Debug("dataprovider: sql query")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []*model.Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for idx := range values {
			pointers[idx] = &values[idx]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		record := model.NewRecord()
		for idx, column := range columns {
			record.Set(column, s.columnValue(values[idx]))
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *SQL) columnValue(value any) any {
	if raw, ok := value.([]byte); ok {
		value = string(raw)
	}
	text, ok := value.(string)
	if !ok || !s.decodeJSON {
		return value
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return value
	}
	decoded, err := model.DecodeValue([]byte(trimmed))
	if err != nil {
		return value
	}
	return decoded
}

func whereClause(filter map[string]any) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	var (
		clauses []string
		args    []any
	)
	for _, key := range sortedKeys(filter) {
		if !identifierPattern.MatchString(key) {
			return "", nil, fmt.Errorf("dataprovider: invalid filter field %q", key)
		}
		clauses = append(clauses, quote(key)+" = ?")
		args = append(args, filter[key])
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func quote(identifier string) string {
	return `"` + identifier + `"`
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
