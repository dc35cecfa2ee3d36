package sqldb

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wansing/artigo/docstore"
)

// DocumentStore stores JSON documents in a single SQLite table. Filters and ordering are evaluated with json_extract.
type DocumentStore struct {
	DB  *sql.DB
	Now func() time.Time // defaults to time.Now
}

func NewDocumentStore(db *sql.DB) (*DocumentStore, error) {

	_, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS document (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			fields TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		);`)
	if err != nil {
		return nil, fmt.Errorf("creating document table: %w", err)
	}

	return &DocumentStore{DB: db}, nil
}

func (s *DocumentStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func indexName(index docstore.Index) string {
	return fmt.Sprintf("document__%s__%s__%s", index.Collection, index.FilterField, index.OrderField)
}

// EnsureIndex creates an expression index which serves equality on FilterField and ordering by OrderField.
func (s *DocumentStore) EnsureIndex(ctx context.Context, index docstore.Index) error {
	if !docstore.ValidField(index.Collection) || !docstore.ValidField(index.FilterField) || !docstore.ValidField(index.OrderField) {
		return fmt.Errorf("invalid index %s", index)
	}
	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON document (collection, %s, %s, %s)`,
		indexName(index),
		extract(index.FilterField),
		extract(index.OrderField+".seconds"),
		extract(index.OrderField+".nanos"),
	))
	if err != nil {
		return fmt.Errorf("creating index %s: %w", index, err)
	}
	return nil
}

func (s *DocumentStore) hasIndex(ctx context.Context, index docstore.Index) (bool, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, indexName(index)).Scan(&count)
	return count > 0, err
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var data []byte
	err := s.DB.QueryRowContext(ctx, `SELECT fields FROM document WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("db error: %w", err)
	}
	fields, err := decodeFields(data)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

func (s *DocumentStore) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {

	if err := q.Validate(); err != nil {
		return nil, err
	}

	for _, index := range docstore.RequiredIndexes(q) {
		ok, err := s.hasIndex(ctx, index)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", docstore.ErrIndexUnavailable, index)
		}
	}

	var query = &strings.Builder{}
	var args = []any{q.Collection}

	query.WriteString(`SELECT id, fields FROM document WHERE collection = ?`)

	for _, f := range q.Filters {
		cond, condArgs, err := filterSQL(f)
		if err != nil {
			return nil, err
		}
		query.WriteString(" AND ")
		query.WriteString(cond)
		args = append(args, condArgs...)
	}

	query.WriteString(" ORDER BY ")
	if q.OrderBy != nil {
		var dir = "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		// timestamps are ordered by their components, everything else by its value
		for _, path := range []string{q.OrderBy.Field + ".seconds", q.OrderBy.Field + ".nanos", q.OrderBy.Field} {
			query.WriteString(extract(path))
			query.WriteString(" ")
			query.WriteString(dir)
			query.WriteString(", ")
		}
	}
	query.WriteString("rowid ASC")

	if q.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		fields, err := decodeFields(data)
		if err != nil {
			return nil, fmt.Errorf("decoding document %s: %w", id, err)
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

func (s *DocumentStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {

	if !docstore.ValidField(collection) {
		return "", fmt.Errorf("invalid collection name %q", collection)
	}

	fields, err := docstore.ValidateFields(fields, s.now())
	if err != nil {
		return "", err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := s.DB.ExecContext(ctx, `INSERT INTO document (collection, id, fields) VALUES (?, ?, ?)`, collection, id, string(data)); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// Update merges fields into the stored document within a transaction.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {

	fields, err := docstore.ValidateFields(fields, s.now())
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer tx.Rollback()

	var data []byte
	err = tx.QueryRowContext(ctx, `SELECT fields FROM document WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	existing, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("decoding document %s: %w", id, err)
	}
	for name, value := range fields {
		existing[name] = value
	}

	if data, err = encodeFields(existing); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE document SET fields = ? WHERE collection = ? AND id = ?`, string(data), collection, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM document WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// extract returns a json_extract expression. The path must consist of valid field names.
func extract(path string) string {
	return fmt.Sprintf("json_extract(fields, '$.%s')", path)
}

func jsonType(path string) string {
	return fmt.Sprintf("json_type(fields, '$.%s')", path)
}

// filterSQL matches values of the same type only, like docstore.MemStore does.
func filterSQL(f docstore.Filter) (string, []any, error) {

	value, err := docstore.NormalizeValue(f.Value)
	if err != nil {
		return "", nil, fmt.Errorf("filter on %s: %w", f.Field, err)
	}

	switch v := value.(type) {
	case nil:
		return jsonType(f.Field) + " = 'null'", nil, nil
	case bool:
		if v {
			return jsonType(f.Field) + " = 'true'", nil, nil
		}
		return jsonType(f.Field) + " = 'false'", nil, nil
	case int64, float64:
		return jsonType(f.Field) + " IN ('integer', 'real') AND " + extract(f.Field) + " = ?", []any{v}, nil
	case string:
		return jsonType(f.Field) + " = 'text' AND " + extract(f.Field) + " = ?", []any{v}, nil
	case docstore.Timestamp:
		cond := extract(f.Field+".type") + " = 'timestamp' AND " +
			extract(f.Field+".seconds") + " = ? AND " +
			extract(f.Field+".nanos") + " = ?"
		return cond, []any{v.Seconds, int64(v.Nanos)}, nil
	default:
		return "", nil, fmt.Errorf("filter on %s: unsupported value %v", f.Field, value)
	}
}

type jsonTimestamp struct {
	Seconds int64  `json:"seconds"`
	Nanos   int32  `json:"nanos"`
	Type    string `json:"type"`
}

// encodeFields returns JSON text. It must be stored as TEXT, as SQLite treats BLOBs as JSONB.
func encodeFields(fields map[string]any) ([]byte, error) {
	var raw = make(map[string]any, len(fields))
	for name, value := range fields {
		if ts, ok := value.(docstore.Timestamp); ok {
			raw[name] = jsonTimestamp{Seconds: ts.Seconds, Nanos: ts.Nanos, Type: "timestamp"}
		} else {
			raw[name] = value
		}
	}
	return json.Marshal(raw)
}

func decodeFields(data []byte) (map[string]any, error) {

	var dec = json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	var fields = make(map[string]any, len(raw))
	for name, value := range raw {
		v, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = v
	}
	return fields, nil
}

func decodeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string:
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	case map[string]any:
		if v["type"] != "timestamp" {
			return nil, errors.New("nested objects are not supported")
		}
		seconds, err := jsonInt(v["seconds"])
		if err != nil {
			return nil, err
		}
		nanos, err := jsonInt(v["nanos"])
		if err != nil {
			return nil, err
		}
		return docstore.Timestamp{Seconds: seconds, Nanos: int32(nanos)}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func jsonInt(value any) (int64, error) {
	n, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %T", value)
	}
	return n.Int64()
}
