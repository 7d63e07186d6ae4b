package main

import (
	"strconv"
	"strings"
)

// parseDataType parses a native type-declaration string into its canonical
// form. It is total: input no grammar alternative fully consumes comes back
// as a Custom type carrying the original text, so introspection can keep
// going over dialect extensions it does not understand.
func parseDataType(native string) DataType {
	for _, rule := range typeGrammar {
		sc := newTypeScanner(native)
		if dt, ok := rule(sc); ok && sc.done() {
			return dt
		}
	}
	return customType(native)
}

// typeGrammar lists the grammar alternatives in priority order. Within each
// family the most specific spelling is tried first ("CHARACTER VARYING"
// before "CHARACTER", "INT8" before "INT"), and the first alternative that
// consumes the whole input wins.
var typeGrammar = []func(*typeScanner) (DataType, bool){
	parseNationalCharType,
	parseCharType,
	parseBitType,
	parseNumericType,
	parseFloatType,
	parseSerialType,
	parseIntType,
	parseBooleanType,
	parseDateTimeType,
	parseTextType,
	parseBlobType,
}

func parseNationalCharType(s *typeScanner) (DataType, bool) {
	varying := false
	switch {
	case s.keyword("NVARCHAR"):
		varying = true
	case s.keyword("NCHAR"):
		varying = s.keyword("VARYING")
	case s.keyword("NATIONAL"):
		if !s.keyword("CHARACTER") && !s.keyword("CHAR") {
			return DataType{}, false
		}
		varying = s.keyword("VARYING")
	default:
		return DataType{}, false
	}
	length, ok := s.optionalArgs(1)
	if !ok {
		return DataType{}, false
	}
	kind := KindNChar
	if varying {
		kind = KindNVarChar
	}
	dt := DataType{Kind: kind}
	if len(length) == 1 {
		dt.Length = int64Ptr(length[0])
	}
	return dt, true
}

func parseCharType(s *typeScanner) (DataType, bool) {
	varying := false
	switch {
	case s.keyword("VARCHAR"):
		varying = true
	case s.keyword("CHARACTER"), s.keyword("CHAR"):
		varying = s.keyword("VARYING")
	default:
		return DataType{}, false
	}
	args, ok := s.optionalArgs(1)
	if !ok {
		return DataType{}, false
	}
	kind := KindChar
	if varying {
		kind = KindVarChar
	}
	dt := DataType{Kind: kind}
	if len(args) == 1 {
		dt.Length = int64Ptr(args[0])
	}
	// Optional trailing CHARACTER SET <name> clause (MySQL).
	if s.keyword("CHARACTER") {
		if !s.keyword("SET") {
			return DataType{}, false
		}
		cs, ok := s.word()
		if !ok {
			return DataType{}, false
		}
		dt.Charset = strings.ToLower(cs)
	}
	return dt, true
}

func parseBitType(s *typeScanner) (DataType, bool) {
	varying := false
	switch {
	case s.keyword("VARBINARY"), s.keyword("VARBIT"):
		varying = true
	case s.keyword("BINARY"):
	case s.keyword("BIT"):
		varying = s.keyword("VARYING")
	default:
		return DataType{}, false
	}
	args, ok := s.optionalArgs(1)
	if !ok {
		return DataType{}, false
	}
	kind := KindBit
	if varying {
		kind = KindVarBit
	}
	dt := DataType{Kind: kind}
	if len(args) == 1 {
		dt.Length = int64Ptr(args[0])
	}
	return dt, true
}

func parseNumericType(s *typeScanner) (DataType, bool) {
	var kind TypeKind
	switch {
	case s.keyword("NUMERIC"):
		kind = KindNumeric
	case s.keyword("DECIMAL"), s.keyword("DEC"):
		kind = KindDecimal
	default:
		return DataType{}, false
	}
	args, ok := s.optionalArgs(2)
	if !ok {
		return DataType{}, false
	}
	dt := DataType{Kind: kind}
	if len(args) >= 1 {
		dt.Precision = int64Ptr(args[0])
	}
	if len(args) == 2 {
		dt.Scale = int64Ptr(args[1])
	}
	return dt, true
}

func parseFloatType(s *typeScanner) (DataType, bool) {
	switch {
	case s.keyword("DOUBLE"):
		s.keyword("PRECISION") // optional in MySQL, mandatory in the standard
		return DataType{Kind: KindDouble}, true
	case s.keyword("FLOAT8"):
		return DataType{Kind: KindDouble}, true
	case s.keyword("FLOAT4"), s.keyword("REAL"):
		return DataType{Kind: KindReal}, true
	case s.keyword("FLOAT"):
		args, ok := s.optionalArgs(1)
		if !ok {
			return DataType{}, false
		}
		dt := DataType{Kind: KindFloat}
		if len(args) == 1 {
			dt.Precision = int64Ptr(args[0])
		}
		return dt, true
	}
	return DataType{}, false
}

func parseSerialType(s *typeScanner) (DataType, bool) {
	switch {
	case s.keyword("BIGSERIAL"), s.keyword("SERIAL8"):
		return DataType{Kind: KindBigSerial}, true
	case s.keyword("SMALLSERIAL"), s.keyword("SERIAL2"):
		return DataType{Kind: KindSmallSerial}, true
	case s.keyword("SERIAL4"), s.keyword("SERIAL"):
		return DataType{Kind: KindSerial}, true
	}
	return DataType{}, false
}

func parseIntType(s *typeScanner) (DataType, bool) {
	var kind TypeKind
	switch {
	case s.keyword("BIGINT"), s.keyword("INT8"):
		kind = KindBigInt
	case s.keyword("SMALLINT"), s.keyword("INT2"), s.keyword("TINYINT"):
		kind = KindSmallInt
	case s.keyword("MEDIUMINT"), s.keyword("INTEGER"), s.keyword("INT4"), s.keyword("INT"):
		kind = KindInt
	default:
		return DataType{}, false
	}
	// MySQL display width, e.g. int(11) — carried nowhere, but must not
	// bounce the declaration into the custom fallback.
	if _, ok := s.optionalArgs(1); !ok {
		return DataType{}, false
	}
	s.keyword("UNSIGNED")
	return DataType{Kind: kind}, true
}

func parseBooleanType(s *typeScanner) (DataType, bool) {
	if s.keyword("BOOLEAN") || s.keyword("BOOL") {
		return DataType{Kind: KindBoolean}, true
	}
	return DataType{}, false
}

func parseDateTimeType(s *typeScanner) (DataType, bool) {
	var kind TypeKind
	tz := false
	switch {
	case s.keyword("TIMESTAMPTZ"):
		kind, tz = KindTimestamp, true
	case s.keyword("TIMESTAMP"), s.keyword("DATETIME"):
		kind = KindTimestamp
	case s.keyword("TIMETZ"):
		kind, tz = KindTime, true
	case s.keyword("TIME"):
		kind = KindTime
	case s.keyword("DATE"):
		return DataType{Kind: KindDate}, true
	default:
		return DataType{}, false
	}
	args, ok := s.optionalArgs(1)
	if !ok {
		return DataType{}, false
	}
	dt := DataType{Kind: kind, WithTimezone: tz}
	if len(args) == 1 {
		dt.Precision = int64Ptr(args[0])
	}
	// Optional WITH/WITHOUT (TIME ZONE | TIMEZONE) suffix.
	switch {
	case s.keyword("WITH"):
		if !s.timezoneWords() {
			return DataType{}, false
		}
		dt.WithTimezone = true
	case s.keyword("WITHOUT"):
		if !s.timezoneWords() {
			return DataType{}, false
		}
		dt.WithTimezone = false
	}
	return dt, true
}

func parseTextType(s *typeScanner) (DataType, bool) {
	switch {
	case s.keyword("TEXT"), s.keyword("CLOB"),
		s.keyword("TINYTEXT"), s.keyword("MEDIUMTEXT"), s.keyword("LONGTEXT"):
		return DataType{Kind: KindText}, true
	}
	return DataType{}, false
}

func parseBlobType(s *typeScanner) (DataType, bool) {
	switch {
	case s.keyword("BLOB"), s.keyword("BYTEA"),
		s.keyword("TINYBLOB"), s.keyword("MEDIUMBLOB"), s.keyword("LONGBLOB"):
		return DataType{Kind: KindBlob}, true
	}
	return DataType{}, false
}

// --- scanner ---

// typeScanner is a cursor over a native type declaration. Matching is
// case-insensitive and keyword matches stop at word boundaries, so "INT"
// never consumes the prefix of "INTERVAL".
type typeScanner struct {
	src string
	pos int
}

func newTypeScanner(src string) *typeScanner {
	return &typeScanner{src: strings.TrimSpace(src)}
}

func (s *typeScanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *typeScanner) done() bool {
	s.skipSpace()
	return s.pos >= len(s.src)
}

// keyword consumes kw if it appears next, ending at a word boundary.
func (s *typeScanner) keyword(kw string) bool {
	s.skipSpace()
	end := s.pos + len(kw)
	if end > len(s.src) {
		return false
	}
	if !strings.EqualFold(s.src[s.pos:end], kw) {
		return false
	}
	if end < len(s.src) && isWordByte(s.src[end]) {
		return false
	}
	s.pos = end
	return true
}

// timezoneWords consumes "TIME ZONE" or "TIMEZONE".
func (s *typeScanner) timezoneWords() bool {
	if s.keyword("TIMEZONE") {
		return true
	}
	return s.keyword("TIME") && s.keyword("ZONE")
}

// word consumes and returns the next identifier-like token.
func (s *typeScanner) word() (string, bool) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.src) && isWordByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.src[start:s.pos], true
}

// optionalArgs consumes a parenthesized list of up to max decimal literals.
// Absence of a parenthesis is fine (nil, true); a malformed or oversized list
// fails the alternative.
func (s *typeScanner) optionalArgs(max int) ([]int64, bool) {
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != '(' {
		return nil, true
	}
	s.pos++
	var args []int64
	for {
		s.skipSpace()
		start := s.pos
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
		if s.pos == start {
			return nil, false
		}
		n, err := strconv.ParseInt(s.src[start:s.pos], 10, 64)
		if err != nil {
			return nil, false
		}
		args = append(args, n)
		s.skipSpace()
		if s.pos < len(s.src) && s.src[s.pos] == ',' {
			s.pos++
			continue
		}
		break
	}
	if len(args) > max {
		return nil, false
	}
	if s.pos >= len(s.src) || s.src[s.pos] != ')' {
		return nil, false
	}
	s.pos++
	return args, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
