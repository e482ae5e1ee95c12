package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRE matches money-looking substrings: an optional currency marker,
// digits with optional thousands grouping, and an optional two-digit cents
// part. OCR output is noisy, so matching stays deliberately loose and the
// scoring step decides what to trust.
var amountRE = regexp.MustCompile(`(?i)(?:[$€£]|usd|eur|ars)?\s*([0-9]{1,3}(?:[.,][0-9]{3})*(?:[.,][0-9]{2})?|[0-9]{1,7}(?:[.,][0-9]{2})?)`)

var centsRE = regexp.MustCompile(`[.,][0-9]{2}$`)

// candidate is one money-looking substring with the line it came from.
type candidate struct {
	raw  string
	line string
}

// findCandidates scans OCR text line by line for amount-shaped substrings.
func findCandidates(text string) []candidate {
	var out []candidate
	seen := map[string]struct{}{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, m := range amountRE.FindAllString(trimmed, -1) {
			m = strings.TrimSpace(m)
			digits := onlyDigits(m)
			if len(digits) < 2 || len(digits) > 9 {
				continue
			}
			key := m + "|" + trimmed
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, candidate{raw: m, line: trimmed})
		}
	}
	return out
}

// parseAmount converts a matched substring into currency units. The last
// separator counts as the decimal point when exactly two digits follow it;
// any other separators are thousands grouping.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$€£ ")
	if s == "" {
		return 0, false
	}
	var whole, cents string
	if centsRE.MatchString(s) {
		sep := strings.LastIndexAny(s, ".,")
		whole = onlyDigits(s[:sep])
		cents = s[sep+1:]
	} else {
		whole = onlyDigits(s)
	}
	if whole == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	v := float64(n)
	if cents != "" {
		c, err := strconv.ParseInt(cents, 10, 64)
		if err != nil {
			return 0, false
		}
		v += float64(c) / 100
	}
	return v, v > 0
}

// scoreCandidate ranks a candidate by contextual hints. Total lines and
// explicit currency markers dominate; bare digit runs (phone numbers,
// transaction ids) score poorly and get filtered by plausibility.
func scoreCandidate(c candidate) int {
	s := 0
	lowLine := strings.ToLower(c.line)
	lowRaw := strings.ToLower(c.raw)
	// "subtotal" must not hit the "total" branch too
	if strings.Contains(lowLine, "subtotal") {
		s += 4
	} else if strings.Contains(lowLine, "total") || strings.Contains(lowLine, "amount due") {
		s += 10
	}
	if strings.ContainsAny(c.raw, "$€£") || strings.Contains(lowRaw, "usd") || strings.Contains(lowRaw, "eur") {
		s += 8
	}
	if centsRE.MatchString(c.raw) {
		s += 5
	}
	if strings.Contains(lowLine, "tel") || strings.Contains(lowLine, "phone") || strings.Contains(lowLine, "fax") {
		s -= 10
	}
	if len(onlyDigits(c.raw)) >= 4 {
		s++
	}
	return s
}

// plausibleAmount rejects digit runs that are more likely ids than money:
// leading zeros, very long runs, or mid-size runs with no separators.
func plausibleAmount(c candidate) bool {
	d := onlyDigits(c.raw)
	if d == "" || d[0] == '0' {
		return false
	}
	if strings.ContainsAny(c.raw, "$€£.,") {
		return true
	}
	if len(d) > 6 {
		return false
	}
	return len(d) >= 2
}

// bestAmount picks the highest-scoring plausible candidate. Equal scores
// break toward the larger amount, then the longer raw match.
func bestAmount(cands []candidate) (float64, string, bool) {
	type scored struct {
		amount float64
		raw    string
		score  int
	}
	var best *scored
	for _, c := range cands {
		if !plausibleAmount(c) {
			continue
		}
		amount, ok := parseAmount(c.raw)
		if !ok {
			continue
		}
		sc := scored{amount: amount, raw: c.raw, score: scoreCandidate(c)}
		switch {
		case best == nil:
			best = &sc
		case sc.score > best.score:
			best = &sc
		case sc.score == best.score && sc.amount > best.amount:
			best = &sc
		case sc.score == best.score && sc.amount == best.amount && len(sc.raw) > len(best.raw):
			best = &sc
		}
	}
	if best == nil {
		return 0, "", false
	}
	return best.amount, best.raw, true
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
