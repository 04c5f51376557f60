package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpExtractsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_product_variants_sku_code",
		TableName:      "product_variants",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeDependency, fmt.Errorf("insert: %w", pgErr), "db: insert variant")

	d := Dump(err)
	if d.Code != CodeDependency || !d.Retryable {
		t.Fatalf("unexpected code/retryable %s/%v", d.Code, d.Retryable)
	}
	if d.PGCode != "23505" || d.PGTable != "product_variants" {
		t.Fatalf("missing pg diagnostics: %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}

	fields := d.Fields()
	if fields["pg_constraint"] != "ux_product_variants_sku_code" {
		t.Fatalf("expected constraint in fields, got %v", fields)
	}
}

func TestDumpOmitsEmptyPostgresFields(t *testing.T) {
	fields := Dump(New(CodeValidation, "bad")).Fields()
	if _, ok := fields["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted for non-postgres errors")
	}
	if fields["error_code"] != CodeValidation {
		t.Fatalf("unexpected error code %v", fields["error_code"])
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump for nil error")
	}
}
