package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Persisted predicate documents use a keyed-union encoding: every predicate
// object carries a "tag" discriminator plus variant fields, wrapped in a
// versioned envelope. Unknown predicate tags and unknown type tags decode to
// opaque payloads instead of failing, so documents written by newer tool
// versions still load and re-encode byte for byte.

const documentVersion = 1

type predicateDocument struct {
	Version    int               `json:"version"`
	Predicates []json.RawMessage `json:"predicates"`
}

type predicateJSON struct {
	Tag        string          `json:"tag"`
	Table      json.RawMessage `json:"table,omitempty"`
	Column     string          `json:"column,omitempty"`
	Type       json.RawMessage `json:"type,omitempty"`
	Constraint string          `json:"constraint,omitempty"`
	Columns    []string        `json:"columns,omitempty"`
}

type tableJSON struct {
	Schema string `json:"schema,omitempty"`
	Name   string `json:"name"`
}

type typeJSON struct {
	Tag       string `json:"tag"`
	Length    *int64 `json:"length,omitempty"`
	Precision *int64 `json:"precision,omitempty"`
	Scale     *int64 `json:"scale,omitempty"`
	Charset   string `json:"charset,omitempty"`
	Timezone  bool   `json:"timezone,omitempty"`
	Name      string `json:"name,omitempty"`
}

// encodePredicates serializes an ordered predicate sequence into a versioned
// document.
func encodePredicates(preds []Predicate) ([]byte, error) {
	doc := predicateDocument{Version: documentVersion}
	for i, p := range preds {
		raw, err := encodePredicate(p)
		if err != nil {
			return nil, fmt.Errorf("predicate %d: %w", i, err)
		}
		doc.Predicates = append(doc.Predicates, raw)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodePredicate(p Predicate) (json.RawMessage, error) {
	if p.Kind == PredOpaque {
		if len(p.Raw) == 0 {
			return nil, fmt.Errorf("opaque predicate with no stored document")
		}
		return compactRaw(p.Raw)
	}

	out := predicateJSON{Tag: string(p.Kind)}
	table, err := json.Marshal(encodeTableName(p.Table))
	if err != nil {
		return nil, err
	}
	out.Table = table

	switch p.Kind {
	case PredTableExists:
	case PredHasColumn:
		if p.Type == nil {
			return nil, fmt.Errorf("column predicate for %s.%s has no type", p.Table, p.Column)
		}
		t, err := encodeDataType(*p.Type)
		if err != nil {
			return nil, err
		}
		out.Column = p.Column
		out.Type = t
	case PredColumnConstraint:
		out.Column = p.Column
		out.Constraint = p.Constraint
	case PredHasPrimaryKey:
		if len(p.PKColumns) == 0 {
			return nil, fmt.Errorf("primary key predicate for %s has no columns", p.Table)
		}
		out.Columns = p.PKColumns
	default:
		return nil, fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
	return json.Marshal(out)
}

// encodeTableName writes a bare string for default-schema names and a
// schema/name object otherwise.
func encodeTableName(t TableName) any {
	if t.Schema == "" {
		return t.Name
	}
	return tableJSON{Schema: t.Schema, Name: t.Name}
}

func encodeDataType(dt DataType) (json.RawMessage, error) {
	if dt.Kind == KindCustom && len(dt.CustomRaw) > 0 {
		return compactRaw(dt.CustomRaw)
	}
	out := typeJSON{Tag: string(dt.Kind)}
	if dt.Kind == KindCustom {
		out.Name = dt.CustomName
	}
	out.Length = dt.Length
	out.Precision = dt.Precision
	out.Scale = dt.Scale
	out.Charset = dt.Charset
	out.Timezone = dt.WithTimezone
	return json.Marshal(out)
}

// decodePredicates parses a versioned predicate document. Documents from
// newer tool versions load: the version field is tolerated, unknown predicate
// tags become opaque predicates, unknown type tags become custom types.
func decodePredicates(data []byte) ([]Predicate, error) {
	var doc predicateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, decodeErrorf("document", "not a predicate document: %v", err)
	}
	preds := make([]Predicate, 0, len(doc.Predicates))
	for i, raw := range doc.Predicates {
		p, err := decodePredicate(raw)
		if err != nil {
			return nil, fmt.Errorf("predicate %d: %w", i, err)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func decodePredicate(raw json.RawMessage) (Predicate, error) {
	var pj predicateJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		return Predicate{}, decodeErrorf("predicate", "malformed object: %v", err)
	}
	if pj.Tag == "" {
		return Predicate{}, decodeErrorf("tag", "missing discriminator")
	}

	switch PredicateKind(pj.Tag) {
	case PredTableExists, PredHasColumn, PredColumnConstraint, PredHasPrimaryKey:
	default:
		// Future variant: keep the document for lossless re-encoding.
		compact, err := compactRaw(raw)
		if err != nil {
			return Predicate{}, decodeErrorf("predicate", "malformed document: %v", err)
		}
		return Predicate{Kind: PredOpaque, Raw: compact}, nil
	}

	table, err := decodeTableName(pj.Table)
	if err != nil {
		return Predicate{}, err
	}
	p := Predicate{Kind: PredicateKind(pj.Tag), Table: table}

	switch p.Kind {
	case PredHasColumn:
		if pj.Column == "" {
			return Predicate{}, decodeErrorf("column", "missing column name")
		}
		if len(pj.Type) == 0 {
			return Predicate{}, decodeErrorf("type", "missing column type")
		}
		dt, err := decodeDataType(pj.Type)
		if err != nil {
			return Predicate{}, err
		}
		p.Column = pj.Column
		p.Type = &dt
	case PredColumnConstraint:
		if pj.Column == "" {
			return Predicate{}, decodeErrorf("column", "missing column name")
		}
		if pj.Constraint == "" {
			return Predicate{}, decodeErrorf("constraint", "missing constraint definition")
		}
		p.Column = pj.Column
		p.Constraint = pj.Constraint
	case PredHasPrimaryKey:
		if len(pj.Columns) == 0 {
			return Predicate{}, decodeErrorf("columns", "primary key must list at least one column")
		}
		p.PKColumns = pj.Columns
	}
	return p, nil
}

func decodeTableName(raw json.RawMessage) (TableName, error) {
	if len(raw) == 0 {
		return TableName{}, decodeErrorf("table", "missing table name")
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "" {
			return TableName{}, decodeErrorf("table", "empty table name")
		}
		return TableName{Name: name}, nil
	}
	var tj tableJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return TableName{}, decodeErrorf("table", "expected string or schema/name object: %v", err)
	}
	if tj.Name == "" {
		return TableName{}, decodeErrorf("table", "missing name field")
	}
	return TableName{Schema: tj.Schema, Name: tj.Name}, nil
}

// decodeDataType accepts, in order of preference: a bare string shorthand
// (any native spelling the parser knows, e.g. "blob", "clob", "bigint"), a
// binary/varbinary record carrying a size, a tagged object, and finally the
// custom escape hatch for tags this version does not know.
func decodeDataType(raw json.RawMessage) (DataType, error) {
	var shorthand string
	if err := json.Unmarshal(raw, &shorthand); err == nil {
		if shorthand == "" {
			return DataType{}, decodeErrorf("type", "empty type label")
		}
		return parseDataType(shorthand), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return DataType{}, decodeErrorf("type", "expected string or object: %v", err)
	}

	// binary/varbinary shape: {"binary": {"size": 16}} or {"binary": 16}.
	for _, shape := range []struct {
		key  string
		kind TypeKind
	}{{"binary", KindBit}, {"varbinary", KindVarBit}} {
		body, ok := fields[shape.key]
		if !ok {
			continue
		}
		size, err := decodeBinarySize(shape.key, body)
		if err != nil {
			return DataType{}, err
		}
		return DataType{Kind: shape.kind, Length: size}, nil
	}

	tagRaw, ok := fields["tag"]
	if !ok {
		// Unknown shape: preserve it opaquely.
		return opaqueDataType(raw)
	}
	var tag string
	if err := json.Unmarshal(tagRaw, &tag); err != nil {
		return DataType{}, decodeErrorf("type.tag", "expected string: %v", err)
	}

	switch TypeKind(tag) {
	case KindChar, KindVarChar, KindNChar, KindNVarChar, KindBit, KindVarBit,
		KindNumeric, KindDecimal, KindFloat, KindDouble, KindReal,
		KindInt, KindSmallInt, KindBigInt,
		KindSmallSerial, KindSerial, KindBigSerial,
		KindBoolean, KindDate, KindTime, KindTimestamp, KindText, KindBlob:
	case KindCustom:
		var tj typeJSON
		if err := json.Unmarshal(raw, &tj); err != nil {
			return DataType{}, decodeErrorf("type", "malformed custom type: %v", err)
		}
		if tj.Name == "" {
			return DataType{}, decodeErrorf("type.name", "custom type has no name")
		}
		return customType(tj.Name), nil
	default:
		return opaqueDataType(raw)
	}

	dt := DataType{Kind: TypeKind(tag)}
	var err error
	if dt.Length, err = decodeOptionalInt(fields, "length"); err != nil {
		return DataType{}, err
	}
	if dt.Precision, err = decodeOptionalInt(fields, "precision"); err != nil {
		return DataType{}, err
	}
	if dt.Scale, err = decodeOptionalInt(fields, "scale"); err != nil {
		return DataType{}, err
	}
	if csRaw, ok := fields["charset"]; ok {
		if err := json.Unmarshal(csRaw, &dt.Charset); err != nil {
			return DataType{}, decodeErrorf("type.charset", "expected string: %v", err)
		}
	}
	if tzRaw, ok := fields["timezone"]; ok {
		if err := json.Unmarshal(tzRaw, &dt.WithTimezone); err != nil {
			return DataType{}, decodeErrorf("type.timezone", "expected boolean: %v", err)
		}
	}
	return dt, nil
}

func opaqueDataType(raw json.RawMessage) (DataType, error) {
	compact, err := compactRaw(raw)
	if err != nil {
		return DataType{}, decodeErrorf("type", "malformed document: %v", err)
	}
	return DataType{Kind: KindCustom, CustomRaw: compact}, nil
}

func decodeBinarySize(key string, raw json.RawMessage) (*int64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return checkedInt("type."+key, n)
	}
	var body struct {
		Size *float64 `json:"size"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, decodeErrorf("type."+key, "expected size: %v", err)
	}
	if body.Size == nil {
		return nil, nil
	}
	return checkedInt("type."+key+".size", *body.Size)
}

func decodeOptionalInt(fields map[string]json.RawMessage, key string) (*int64, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, decodeErrorf("type."+key, "expected number: %v", err)
	}
	return checkedInt("type."+key, n)
}

// checkedInt refuses fractional or out-of-range numeric fields instead of
// truncating them.
func checkedInt(field string, v float64) (*int64, error) {
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return nil, &DataLossError{Field: field, Value: fmt.Sprintf("%v", v)}
	}
	return int64Ptr(int64(v)), nil
}

func compactRaw(raw json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
