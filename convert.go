package main

// Predicate conversion maps facts detected against one backend into another
// backend's vocabulary. Rules are consulted in priority order and the first
// match wins: backend-specific override rules first, then the generic
// structural mapping over canonical type payloads. The whole layer is pure.

type convertRule func(p Predicate, src, dst Backend) (Predicate, bool, bool)

// convertRules in priority order. Each rule returns (result, converted,
// matched); a matched rule ends the search even when it produced nothing, so
// a shape one rule claims can never leak into a later, more generic rule.
var convertRules = []convertRule{
	convertNotNullConstraint,
	convertConstraintFallback,
	convertColumnType,
	convertStructural,
}

// convertPredicate translates p from src's vocabulary into dst's. Reports
// false when the predicate has no meaningful equivalent in the target.
func convertPredicate(p Predicate, src, dst Backend) (Predicate, bool) {
	for _, rule := range convertRules {
		if out, ok, matched := rule(p, src, dst); matched {
			return out, ok
		}
	}
	return Predicate{}, false
}

// convertPredicates translates a whole predicate sequence, dropping
// predicates with no target equivalent and reporting how many were dropped.
func convertPredicates(preds []Predicate, src, dst Backend) (out []Predicate, dropped []Predicate) {
	for _, p := range preds {
		if c, ok := convertPredicate(p, src, dst); ok {
			out = append(out, c)
		} else {
			dropped = append(dropped, p)
		}
	}
	return out, dropped
}

// convertNotNullConstraint recognizes the source backend's NOT NULL literal
// and re-emits the target's.
func convertNotNullConstraint(p Predicate, src, dst Backend) (Predicate, bool, bool) {
	if p.Kind != PredColumnConstraint {
		return Predicate{}, false, false
	}
	if !equalFoldTrim(p.Constraint, src.NotNull()) {
		return Predicate{}, false, false
	}
	out := p
	out.Constraint = dst.NotNull()
	return out, true, true
}

// convertConstraintFallback claims every remaining constraint predicate:
// constraint text that no override rule recognized is backend-proprietary and
// has no portable equivalent.
func convertConstraintFallback(p Predicate, _, _ Backend) (Predicate, bool, bool) {
	if p.Kind != PredColumnConstraint {
		return Predicate{}, false, false
	}
	return Predicate{}, false, true
}

// convertColumnType maps a column predicate's canonical type through the
// target's capability table. Custom types are given one chance to become
// structured: if the target's parser understands the stored native spelling,
// the parse result is used; otherwise the predicate has no equivalent.
func convertColumnType(p Predicate, _, dst Backend) (Predicate, bool, bool) {
	if p.Kind != PredHasColumn {
		return Predicate{}, false, false
	}
	dt := *p.Type
	if dt.Kind == KindCustom {
		if dt.CustomName == "" {
			return Predicate{}, false, true
		}
		reparsed := dst.ParseNativeType(dt.CustomName)
		if reparsed.Kind == KindCustom {
			return Predicate{}, false, true
		}
		dt = reparsed
	}
	mapped, ok := dst.CanonicalType(dt)
	if !ok {
		return Predicate{}, false, true
	}
	out := p
	out.Type = &mapped
	return out, true, true
}

// convertStructural passes through predicates whose payload carries no
// dialect-specific material (existence, primary keys). Opaque predicates
// from future tool versions have no known equivalent anywhere.
func convertStructural(p Predicate, _, _ Backend) (Predicate, bool, bool) {
	if p.Kind == PredOpaque {
		return Predicate{}, false, true
	}
	return p, true, true
}

func equalFoldTrim(a, b string) bool {
	return foldTrim(a) == foldTrim(b)
}

func foldTrim(s string) string {
	var out []byte
	space := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpace(c) {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
		space = false
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out)
}
