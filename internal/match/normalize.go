package match

import "strings"

// legalSuffixes are trailing company designations stripped before comparing
// client names, so "Acme Corp" and "Acme Corporation" score as near-identical.
var legalSuffixes = []string{
	" private limited",
	" incorporated",
	" corporation",
	" limited",
	" gmbh",
	" corp.",
	" corp",
	" ltd.",
	" ltd",
	" llc",
	" inc.",
	" inc",
	" pvt",
	" co.",
	" co",
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeCompany lowercases, trims and strips one trailing legal suffix.
func normalizeCompany(s string) string {
	s = normalize(s)
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	return strings.TrimSpace(s)
}

// normalizePhone keeps digits only, so "+1 (555) 010-2030" and "15550102030"
// compare equal.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
