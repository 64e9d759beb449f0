package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"contafeira/internal/domain/record"
)

type colKind int

const (
	kindText colKind = iota
	kindNumeric
	kindInt
	kindTime
)

type column struct {
	name string
	kind colKind
}

type collectionSpec struct {
	columns []column
	// conflict is the upsert key. Configuration rows reuse one fixed id per
	// tenant, so their key is scoped by owner.
	conflict string
}

// collectionSpecs fixes the schema of every synced collection. Wire keys
// map 1:1 onto column names; a key outside this list never reaches SQL.
var collectionSpecs = map[string]collectionSpec{
	"produtos": {conflict: "id", columns: []column{
		{"id", kindText}, {"nome", kindText}, {"preco", kindNumeric},
		{"custo", kindNumeric}, {"estoque", kindInt}, {"categoria", kindText},
		{"user_id", kindText}, {"updated_at", kindTime},
	}},
	"vendas": {conflict: "id", columns: []column{
		{"id", kindText}, {"nome_produto", kindText}, {"valor", kindNumeric},
		{"quantidade", kindInt}, {"forma_pagamento", kindText}, {"cliente", kindText},
		{"data", kindText}, {"hora", kindText}, {"user_id", kindText},
		{"resumo_id", kindText}, {"updated_at", kindTime},
	}},
	"resumos": {conflict: "id", columns: []column{
		{"id", kindText}, {"data", kindText}, {"total", kindNumeric},
		{"total_pix", kindNumeric}, {"total_dinheiro", kindNumeric},
		{"total_cartao", kindNumeric}, {"total_fiado", kindNumeric},
		{"total_custos", kindNumeric}, {"quantidade_vendas", kindInt},
		{"user_id", kindText}, {"updated_at", kindTime},
	}},
	"despesas": {conflict: "id", columns: []column{
		{"id", kindText}, {"descricao", kindText}, {"valor", kindNumeric},
		{"categoria", kindText}, {"data", kindText},
		{"user_id", kindText}, {"updated_at", kindTime},
	}},
	"configuracao": {conflict: "user_id, id", columns: []column{
		{"id", kindText}, {"nome_barraca", kindText},
		{"user_id", kindText}, {"updated_at", kindTime},
	}},
}

// RecordRepository persists the synced collections. Upserts resolve
// conflicting writes from different devices by newest updated_at, the same
// rule the clients apply locally, so both sides converge on the same row.
type RecordRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewRecordRepository(db *Storage, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		db:  db,
		log: log.With("component", "record_repository"),
	}
}

func (r *RecordRepository) Upsert(ctx context.Context, collection string, rows []record.Row) error {
	spec, ok := collectionSpecs[collection]
	if !ok {
		return fmt.Errorf("%w: %s", record.ErrUnknownCollection, collection)
	}
	cols := spec.columns

	query := upsertQuery(collection, spec)

	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		args := make([]any, 0, len(cols))
		for _, col := range cols {
			v, err := bindValue(row[col.name], col)
			if err != nil {
				return fmt.Errorf("%w: column %s: %v", record.ErrInvalidRow, col.name, err)
			}
			args = append(args, v)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			r.log.Error("failed to upsert row",
				"collection", collection, "id", row["id"], "error", err)
			return fmt.Errorf("upsert %s: %w", collection, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *RecordRepository) ModifiedSince(ctx context.Context, userID, collection string, since time.Time) ([]record.Row, error) {
	spec, ok := collectionSpecs[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownCollection, collection)
	}
	cols := spec.columns

	query := selectQuery(collection, cols)
	pgRows, err := r.db.Pool().Query(ctx, query, userID, since)
	if err != nil {
		r.log.Error("failed to list rows",
			"collection", collection, "user_id", userID, "error", err)
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer pgRows.Close()

	out := make([]record.Row, 0)
	for pgRows.Next() {
		dests := make([]any, len(cols))
		for i, col := range cols {
			switch col.kind {
			case kindInt:
				dests[i] = new(*int64)
			case kindTime:
				dests[i] = new(*time.Time)
			default:
				// Numerics come back as text to keep exact decimal digits.
				dests[i] = new(*string)
			}
		}
		if err := pgRows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}

		row := make(record.Row, len(cols))
		for i, col := range cols {
			switch v := dests[i].(type) {
			case **int64:
				if *v != nil {
					row[col.name] = **v
				}
			case **time.Time:
				if *v != nil {
					row[col.name] = (**v).UTC().Format(time.RFC3339Nano)
				}
			case **string:
				if *v != nil {
					row[col.name] = **v
				}
			}
		}
		out = append(out, row)
	}

	return out, pgRows.Err()
}

func upsertQuery(table string, spec collectionSpec) string {
	cols := spec.columns
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	for i, col := range cols {
		names[i] = col.name
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col.name != "id" && col.name != "user_id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col.name, col.name))
		}
	}
	return fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)
		 ON CONFLICT (%s) DO UPDATE SET %s
		 WHERE %s.user_id = EXCLUDED.user_id AND %s.updated_at < EXCLUDED.updated_at`,
		table,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		spec.conflict,
		strings.Join(updates, ", "),
		table, table)
}

func selectQuery(table string, cols []column) string {
	names := make([]string, len(cols))
	for i, col := range cols {
		if col.kind == kindNumeric {
			names[i] = col.name + "::text"
		} else {
			names[i] = col.name
		}
	}
	return fmt.Sprintf(
		`SELECT %s FROM %s WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at`,
		strings.Join(names, ", "), table)
}

// bindValue coerces a decoded JSON value into what the column expects.
func bindValue(v any, col column) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch col.kind {
	case kindInt:
		switch n := v.(type) {
		case float64:
			return int64(n), nil
		case int64:
			return n, nil
		}
		return nil, fmt.Errorf("expected integer, got %T", v)
	case kindTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected timestamp string, got %T", v)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, err
		}
		return ts, nil
	case kindNumeric:
		switch n := v.(type) {
		case float64, string:
			return n, nil
		}
		return nil, fmt.Errorf("expected number, got %T", v)
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	}
}
