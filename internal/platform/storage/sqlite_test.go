package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kojo/kojo/internal/domain/records"
)

func newTestSQLite(t *testing.T) *SQLiteGateway {
	t.Helper()
	gw, err := NewSQLiteGateway(filepath.Join(t.TempDir(), "kojo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { gw.Close() })
	return gw
}

func TestSQLiteGateway_LoadEmpty(t *testing.T) {
	gw := newTestSQLite(t)
	data, err := gw.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Error("expected nil before the first save")
	}
}

func TestSQLiteGateway_RoundTrip(t *testing.T) {
	gw := newTestSQLite(t)
	want := sampleData()
	if err := gw.Save(context.Background(), want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := gw.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestSQLiteGateway_SaveReplacesSnapshot(t *testing.T) {
	gw := newTestSQLite(t)
	gw.Save(context.Background(), sampleData())

	second := records.NewAppData()
	second.Furusato = []records.FurusatoRecord{{ID: "f9", Date: "2026-06-01", City: "焼津市", Amount: 5000}}
	if err := gw.Save(context.Background(), second); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := gw.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Medical) != 0 {
		t.Error("expected the earlier medical records replaced")
	}
	if len(got.Furusato) != 1 || got.Furusato[0].City != "焼津市" {
		t.Errorf("expected the later snapshot, got %+v", got.Furusato)
	}
}

func TestSQLiteGateway_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kojo.db")
	first, err := NewSQLiteGateway(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	want := sampleData()
	if err := first.Save(context.Background(), want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	second, err := NewSQLiteGateway(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer second.Close()

	got, err := second.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected data to survive reopen:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestNewSQLiteGateway_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteGateway(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
