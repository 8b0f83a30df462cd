package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Missing, malformed
// or out-of-range q values count as 1.0; a bare type becomes type/*.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		if mt == "" {
			continue
		}
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: typ, subtype: subtype, q: 1.0}
		for _, p := range params[1:] {
			k, v, _ := strings.Cut(strings.TrimSpace(p), "=")
			if strings.TrimSpace(k) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// format returns "cbor" or "json" for ranges naming one of the two codecs,
// with specificity 2 for RFC 9457 problem types and structured-suffix
// wildcards, 1 for the base type. Anything else, wildcards included, is "".
func (m mediaRange) format() (string, int) {
	if m.typ != "application" {
		return "", 0
	}
	switch m.subtype {
	case "cbor":
		return "cbor", 1
	case "json":
		return "json", 1
	case "problem+cbor", "*+cbor":
		return "cbor", 2
	case "problem+json", "*+json":
		return "json", 2
	}
	return "", 0
}

// selectFormat reports whether CBOR should be served for the given Accept
// header. The q value ranks first and specificity breaks ties; JSON wins any
// remaining tie and is the default when nothing matches.
func selectFormat(accept string) bool {
	type pick struct {
		q      float64
		weight int
		ok     bool
	}
	best := map[string]pick{}
	for _, mr := range parseAccept(accept) {
		name, weight := mr.format()
		if name == "" || mr.q == 0 {
			continue
		}
		cur := best[name]
		if !cur.ok || mr.q > cur.q || (mr.q == cur.q && weight > cur.weight) {
			best[name] = pick{q: mr.q, weight: weight, ok: true}
		}
	}

	c, j := best["cbor"], best["json"]
	switch {
	case !c.ok:
		return false
	case !j.ok:
		return true
	case c.q != j.q:
		return c.q > j.q
	default:
		return c.weight > j.weight
	}
}
