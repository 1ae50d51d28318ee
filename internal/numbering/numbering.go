// Package numbering produces the next human-readable document identifier for
// a user (INV-0001, Q-00001, ...). The counter is best-effort monotonic: two
// concurrent creates can read the same latest identifier and emit duplicates.
// That race is accepted — the identifier is a display label, not a key — so
// there is no lock or database sequence here, and a failure of any kind falls
// back to a time-based identifier instead of blocking document creation.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"billforge/internal/domain"
)

// LatestLookup fetches the most recently created identifier of the given type
// for a user, or "" when the user has none. Injected so this package has no
// storage dependency.
type LatestLookup func(ctx context.Context, userID uuid.UUID, docType domain.DocumentType) (string, error)

// Result carries the produced identifier plus a degradation tag: Fallback is
// true when the time-based identifier was used, with Reason saying why, so
// callers can log the degradation without this package returning an error.
type Result struct {
	Identifier string
	Fallback   bool
	Reason     string
}

type format struct {
	prefix string
	width  int
}

// The differing pad widths (4 for invoices, 5 for quotes) are intentional;
// both formats are preserved exactly.
var formats = map[domain.DocumentType]format{
	domain.DocumentTypeInvoice: {prefix: "INV", width: 4},
	domain.DocumentTypeQuote:   {prefix: "Q", width: 5},
}

// Next returns the next identifier for the user and document type. With no
// prior document it returns the type's seed; otherwise it increments the
// numeric suffix of the latest identifier, keeping its zero-pad width. Any
// lookup error or malformed prior identifier yields <PREFIX>-<unixMillis>.
// Next never returns an error.
func Next(ctx context.Context, userID uuid.UUID, docType domain.DocumentType, lookup LatestLookup) Result {
	f, ok := formats[docType]
	if !ok {
		f = format{prefix: "DOC", width: 4}
		return fallback(f.prefix, fmt.Sprintf("unknown document type %q", docType))
	}

	latest, err := lookup(ctx, userID, docType)
	if err != nil {
		return fallback(f.prefix, fmt.Sprintf("latest identifier lookup failed: %v", err))
	}
	if latest == "" {
		return Result{Identifier: fmt.Sprintf("%s-%0*d", f.prefix, f.width, 1)}
	}

	idx := strings.LastIndex(latest, "-")
	if idx < 0 || idx == len(latest)-1 {
		return fallback(f.prefix, fmt.Sprintf("malformed identifier %q", latest))
	}

	prefix := latest[:idx]
	suffix := latest[idx+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return fallback(f.prefix, fmt.Sprintf("non-numeric suffix in %q", latest))
	}

	// Re-format with the width of the existing suffix; the width grows
	// naturally once the counter passes its padding (9999 -> 10000).
	return Result{Identifier: fmt.Sprintf("%s-%0*d", prefix, len(suffix), n+1)}
}

func fallback(prefix, reason string) Result {
	return Result{
		Identifier: fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli()),
		Fallback:   true,
		Reason:     reason,
	}
}
