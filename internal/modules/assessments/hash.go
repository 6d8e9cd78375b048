package assessments

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/veritaslabs/veritas/internal/domain"
)

// HashSeries produces a deterministic fingerprint of a statement series.
// The engine is deterministic, so two series with the same hash yield the
// same analysis outcome and a stored snapshot can be reused. Field order
// within a statement does not affect the hash.
func HashSeries(series domain.StatementSeries) string {
	var lines []string
	for _, s := range series {
		names := make([]string, 0, len(s.Fields))
		for name := range s.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		var b strings.Builder
		b.WriteString(string(s.Type))
		b.WriteByte('|')
		b.WriteString(s.PeriodEnd.UTC().Format("2006-01-02"))
		for _, name := range names {
			fmt.Fprintf(&b, "|%s=%g", name, s.Fields[name])
		}
		lines = append(lines, b.String())
	}
	sort.Strings(lines)

	h := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h[:16])
}
