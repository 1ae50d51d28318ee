// Command seedcatalog converts a product catalog Excel file into a SQL seed
// file for the products table. The first sheet is read with a header row of
// Name, Description, Unit Price, Tax Rate; amounts are canonicalized to
// 2-place decimal strings.
// Usage: go run ./cmd/seedcatalog -in catalog.xlsx -user <uuid>
// Output: db/seeds/products.sql
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"billforge/internal/money"
)

const batchSize = 500

type productEntry struct {
	name        string
	description string
	unitPrice   string
	taxRate     string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := flag.String("in", "catalog.xlsx", "path to the product catalog Excel file")
	outPath := flag.String("out", "db/seeds/products.sql", "path to the generated SQL seed file")
	userStr := flag.String("user", "", "user id the products belong to (required)")
	flag.Parse()

	userID, err := uuid.Parse(*userStr)
	if err != nil {
		return fmt.Errorf("parse -user: %w", err)
	}

	f, err := excelize.OpenFile(*xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseCatalogSheet(f)
	if err != nil {
		return fmt.Errorf("parse catalog sheet: %w", err)
	}
	log.Printf("catalog sheet: %d products", len(entries))

	// Write SQL file with batched multi-row INSERTs.
	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Product catalog seed data generated from Excel.",
		fmt.Sprintf("-- %d products in batches of %d.", len(entries), batchSize),
		"-- Run: make seed-catalog",
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, userID, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d products (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, *outPath)
	return nil
}

// parseCatalogSheet reads the first sheet.
// Columns: A(0)=name, B(1)=description, C(2)=unit price, D(3)=tax rate (a
// percentage, with or without the "%" sign). Data starts at row index 1.
func parseCatalogSheet(f *excelize.File) ([]productEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []productEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		name := strings.TrimSpace(cellVal(row, 0))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		price := money.ParseAmount(cellVal(row, 2))
		rate := money.ParseAmount(strings.TrimSuffix(strings.TrimSpace(cellVal(row, 3)), "%"))

		entries = append(entries, productEntry{
			name:        name,
			description: strings.TrimSpace(cellVal(row, 1)),
			unitPrice:   price.StringFixed(2),
			taxRate:     rate.StringFixed(2),
		})
	}
	return entries, nil
}

func writeBatch(out *os.File, userID uuid.UUID, batch []productEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO products (id, user_id, name, description, unit_price, tax_rate, created_at, updated_at) VALUES\n")

	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', '%s', '%s', now(), now())",
			uuid.New(), userID, escapeSQL(e.name), escapeSQL(e.description), e.unitPrice, e.taxRate)
	}

	b.WriteString(";\n")

	_, err := out.WriteString(b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
