package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCSVLoader_Load(t *testing.T) {
	l := NewCSVLoader("telco", "testdata/customers.csv")
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.SourceID() != "telco" {
		t.Errorf("SourceID = %q, want telco", snap.SourceID())
	}
	if !snap.LoadedAt().Equal(fixed) {
		t.Errorf("LoadedAt = %v, want %v", snap.LoadedAt(), fixed)
	}
	if snap.Len() != 6 {
		t.Fatalf("Len = %d, want 6", snap.Len())
	}

	records := snap.Records()
	first := records[0]
	if first.ID != "7590-VHVEG" || first.Tenure != 1 || first.Churn {
		t.Errorf("first record wrong: %+v", first)
	}
	// Record strings must survive subsequent reads intact.
	last := records[5]
	if last.ID != "6713-OKOMC" || last.PaymentMethod != PaymentCreditCard {
		t.Errorf("last record wrong: %+v", last)
	}
	if !records[3].SeniorCitizen {
		t.Error("9237-HQITU should be a senior citizen")
	}
	if last.HasInternet() {
		t.Error("6713-OKOMC has no internet service")
	}
}

func TestCSVLoader_MissingFile(t *testing.T) {
	l := NewCSVLoader("x", "testdata/nope.csv")
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("Load of missing file = nil error")
	}
}

func TestCSVLoader_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("customerID,gender\nx,Male\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewCSVLoader("x", path).Load(context.Background())
	if err == nil {
		t.Fatal("Load with missing columns = nil error")
	}
}

func TestCSVLoader_DataQualityError(t *testing.T) {
	// Corrupt one field of the fixture and expect a DataQualityError that
	// pinpoints the row.
	raw, err := os.ReadFile("testdata/customers.csv")
	if err != nil {
		t.Fatal(err)
	}
	bad := append(raw, []byte("9999-BROKE,Male,0,No,No,-4,Yes,No,DSL,No,No,No,No,No,No,Month-to-month,Yes,Electronic check,50.0,200.0,No\n")...)

	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = NewCSVLoader("x", path).Load(context.Background())
	var dqe *DataQualityError
	if !errors.As(err, &dqe) {
		t.Fatalf("err = %v, want *DataQualityError", err)
	}
	if len(dqe.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly one", dqe.Violations)
	}
	v := dqe.Violations[0]
	if v.Row != 7 || v.Field != "tenure" {
		t.Errorf("violation = %+v, want row 7 field tenure", v)
	}
}

func TestCSVLoader_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewCSVLoader("telco", "testdata/customers.csv").Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
