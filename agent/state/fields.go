package state

import "strings"

// ValidEmail applies the syntactic check used during slot filling: a local
// part, an "@", and a domain segment with a dot. Real verification is the
// lookup's job.
func ValidEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return "", false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return "", false
	}
	if strings.ContainsAny(email, " \t") {
		return "", false
	}
	return email, true
}

// ValidOrderNumber normalizes and checks an order number: non-empty
// alphanumeric, with a leading "#" and interior dashes tolerated
// (customers paste "#W001" and "ORD-123" alike).
func ValidOrderNumber(raw string) (string, bool) {
	number := strings.TrimSpace(raw)
	number = strings.TrimPrefix(number, "#")
	if number == "" {
		return "", false
	}
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '-':
		default:
			return "", false
		}
	}
	return number, true
}
