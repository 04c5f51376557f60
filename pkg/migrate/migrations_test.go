package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/catalog-pricing/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file found for %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductVariantsMigrationContainsPricingColumns(t *testing.T) {
	content := readMigration(t, "*_create_product_variants.sql")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS product_variants",
		"cost numeric(12,2),",
		"margin_percent numeric(7,2) NOT NULL DEFAULT 0",
		"calculated_price numeric(12,2)",
		"offer_discount_percent numeric(5,2)",
		"final_price numeric(12,2)",
		"applied_rule_id uuid",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_variants_sku_code",
		"DROP TABLE IF EXISTS product_variants",
	})
}

func TestRuleMigrationsContainConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "*_create_margin_rules.sql"), []string{
		"CREATE TABLE IF NOT EXISTS margin_rules",
		"ux_margin_rules_name",
		"FOREIGN KEY (applied_rule_id) REFERENCES margin_rules(id) ON DELETE RESTRICT",
	})
	assertContains(t, readMigration(t, "*_create_special_offers.sql"), []string{
		"CREATE TYPE offer_rule_type AS ENUM ('sku_override', 'brand', 'product_type', 'category')",
		"CHECK (discount_percent >= 0 AND discount_percent <= 100)",
		"DROP TYPE IF EXISTS offer_rule_type",
	})
}

func TestAuditMigrationIsAppendOnly(t *testing.T) {
	content := readMigration(t, "*_create_pricing_audit_log.sql")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS pricing_audit_log",
		"rule_snapshot jsonb NOT NULL",
		"BEFORE UPDATE OR DELETE ON pricing_audit_log",
		"'margin_rule_applied'",
	})
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}
