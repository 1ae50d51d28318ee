// Command backfill repairs stored documents: it recomputes totals for rows
// whose persisted amounts drift from what the line items imply, and assigns
// identifiers to rows that have none (imports, failed numbering fallbacks).
// Usage: go run ./cmd/backfill [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/money"
	"billforge/internal/numbering"
	"billforge/internal/repository/postgres"
)

const batchSize = 100

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	if err := run(*dryRun); err != nil {
		log.Fatal(err)
	}
}

func run(dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	docRepo := postgres.NewDocumentRepo(db)

	ctx := context.Background()
	offset := 0
	retotaled := 0
	renumbered := 0

	for {
		var docs []domain.Document
		err := db.SelectContext(ctx, &docs,
			`SELECT * FROM documents
			 ORDER BY created_at
			 LIMIT $1 OFFSET $2`, batchSize, offset)
		if err != nil {
			return fmt.Errorf("querying documents at offset %d: %w", offset, err)
		}
		if len(docs) == 0 {
			break
		}

		for i := range docs {
			doc := &docs[i]

			changed := recomputeTotals(doc)
			if changed {
				retotaled++
			}

			if doc.Identifier == "" {
				num := numbering.Next(ctx, doc.UserID, doc.Type, docRepo.LatestIdentifier)
				if num.Fallback {
					log.Printf("WARN: document %s: identifier fallback: %s", doc.ID, num.Reason)
				}
				doc.Identifier = num.Identifier
				renumbered++
				changed = true
			}

			if !changed {
				continue
			}
			if dryRun {
				log.Printf("would update document %s (%s): subtotal=%s tax=%s total=%s identifier=%s",
					doc.ID, doc.Type, doc.Subtotal, doc.TaxAmount, doc.Total, doc.Identifier)
				continue
			}

			_, err := db.ExecContext(ctx,
				`UPDATE documents SET
					identifier = $1, items = $2, subtotal = $3, tax_amount = $4,
					total = $5, updated_at = $6
				 WHERE id = $7`,
				doc.Identifier, doc.Items, doc.Subtotal, doc.TaxAmount,
				doc.Total, time.Now().UTC(), doc.ID)
			if err != nil {
				log.Printf("WARN: failed to update document %s: %v", doc.ID, err)
			}
		}

		if retotaled > 0 && retotaled%batchSize == 0 {
			log.Printf("Progress: %d documents retotaled", retotaled)
		}

		offset += len(docs)
	}

	if dryRun {
		log.Printf("Backfill dry run complete: %d totals drifted, %d identifiers missing", retotaled, renumbered)
	} else {
		log.Printf("Backfill complete: %d totals recomputed, %d identifiers assigned", retotaled, renumbered)
	}
	return nil
}

// recomputeTotals re-derives every per-item amount and the document aggregate
// from the raw quantity/price/rate fields, writing them back onto the document
// and reporting whether anything drifted from the stored values.
func recomputeTotals(doc *domain.Document) bool {
	amounts := make([]money.ItemAmounts, len(doc.Items))
	changed := false
	for i := range doc.Items {
		item := &doc.Items[i]
		lt := money.LineItemTotals(item.Quantity, item.UnitPrice, item.TaxRate)
		if item.Subtotal != lt.Subtotal || item.TaxAmount != lt.TaxAmount || item.Total != lt.Total {
			item.Subtotal = lt.Subtotal
			item.TaxAmount = lt.TaxAmount
			item.Total = lt.Total
			changed = true
		}
		amounts[i] = money.ItemAmounts{Subtotal: lt.Subtotal, TaxAmount: lt.TaxAmount}
	}

	discount := doc.Discount
	if discount == "" {
		discount = "0"
	}
	totals := money.DocumentTotals(amounts, discount)
	if doc.Subtotal != totals.Subtotal || doc.TaxAmount != totals.TaxAmount || doc.Total != totals.Total {
		doc.Subtotal = totals.Subtotal
		doc.TaxAmount = totals.TaxAmount
		doc.Total = totals.Total
		changed = true
	}
	return changed
}
