package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type MockPgPool struct {
	Rows pgx.Rows
	Err  error
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.Rows, m.Err
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

type MockPgRows struct {
	pgx.Rows
	data     [][]interface{}
	rowIndex int
}

func (m *MockPgRows) Next() bool {
	m.rowIndex++
	return m.rowIndex <= len(m.data)
}

func (m *MockPgRows) Scan(dest ...interface{}) error {
	row := m.data[m.rowIndex-1]
	for i, val := range row {
		assign(dest[i], val)
	}
	return nil
}

func (m *MockPgRows) Close()     {}
func (m *MockPgRows) Err() error { return nil }

func TestLoadInitialRatings(t *testing.T) {
	pool := &MockPgPool{Rows: &MockPgRows{data: [][]interface{}{
		{"SEO_p1", 2731.5, 120.25},
		{"DAL_p4", 2210.0, 400.0},
	}}}

	ratings, err := LoadInitialRatings(context.Background(), pool)
	if err != nil {
		t.Fatalf("LoadInitialRatings failed: %v", err)
	}
	if len(ratings) != 2 {
		t.Fatalf("ratings = %d, want 2", len(ratings))
	}

	r := ratings["SEO_p1"]
	if r.Mu != 2731.5 || r.Sigma != 120.25 {
		t.Errorf("SEO_p1 = %+v", r)
	}
	if _, ok := ratings["unknown"]; ok {
		t.Error("unexpected entity present")
	}
}

func TestLoadInitialRatings_QueryError(t *testing.T) {
	pool := &MockPgPool{Err: errors.New("connection refused")}

	if _, err := LoadInitialRatings(context.Background(), pool); err == nil {
		t.Error("expected error to propagate")
	}
}
