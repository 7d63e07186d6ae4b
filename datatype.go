package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TypeKind discriminates the canonical, dialect-neutral column types.
type TypeKind string

const (
	KindChar        TypeKind = "char"
	KindVarChar     TypeKind = "varchar"
	KindNChar       TypeKind = "nchar"
	KindNVarChar    TypeKind = "nvarchar"
	KindBit         TypeKind = "bit"
	KindVarBit      TypeKind = "varbit"
	KindNumeric     TypeKind = "numeric"
	KindDecimal     TypeKind = "decimal"
	KindFloat       TypeKind = "float"
	KindDouble      TypeKind = "double"
	KindReal        TypeKind = "real"
	KindInt         TypeKind = "int"
	KindSmallInt    TypeKind = "smallint"
	KindBigInt      TypeKind = "bigint"
	KindSmallSerial TypeKind = "smallserial"
	KindSerial      TypeKind = "serial"
	KindBigSerial   TypeKind = "bigserial"
	KindBoolean     TypeKind = "boolean"
	KindDate        TypeKind = "date"
	KindTime        TypeKind = "time"
	KindTimestamp   TypeKind = "timestamp"
	KindText        TypeKind = "text"
	KindBlob        TypeKind = "blob"
	KindCustom      TypeKind = "custom"
)

// DataType is the canonical representation of a column's logical SQL type.
// Parameter fields are nil/zero when the native declaration omitted them.
// Custom carries an unrecognized native type losslessly: CustomName holds the
// original declaration text and CustomRaw, when set, the original serialized
// document so re-encoding reproduces it byte for byte.
type DataType struct {
	Kind         TypeKind
	Length       *int64 // char, varchar, nchar, nvarchar, bit, varbit
	Precision    *int64 // numeric, decimal, float, time, timestamp
	Scale        *int64 // numeric, decimal
	Charset      string // char family only
	WithTimezone bool   // time, timestamp
	CustomName   string
	CustomRaw    json.RawMessage
}

func customType(native string) DataType {
	return DataType{Kind: KindCustom, CustomName: native}
}

// isSerial reports whether the type is one of the autoincrement pseudo-types.
func (dt DataType) isSerial() bool {
	switch dt.Kind {
	case KindSmallSerial, KindSerial, KindBigSerial:
		return true
	}
	return false
}

// integerKind returns the plain integer kind backing a serial pseudo-type.
func (dt DataType) integerKind() TypeKind {
	switch dt.Kind {
	case KindSmallSerial:
		return KindSmallInt
	case KindBigSerial:
		return KindBigInt
	case KindSerial:
		return KindInt
	}
	return dt.Kind
}

// Equal reports structural equality, comparing optional parameters by value.
func (dt DataType) Equal(o DataType) bool {
	if dt.Kind != o.Kind || dt.Charset != o.Charset || dt.WithTimezone != o.WithTimezone {
		return false
	}
	if dt.CustomName != o.CustomName || !bytes.Equal(dt.CustomRaw, o.CustomRaw) {
		return false
	}
	return eqInt64Ptr(dt.Length, o.Length) &&
		eqInt64Ptr(dt.Precision, o.Precision) &&
		eqInt64Ptr(dt.Scale, o.Scale)
}

func eqInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// String renders a compact debug form; backend DDL rendering lives on Backend.
func (dt DataType) String() string {
	if dt.Kind == KindCustom {
		return fmt.Sprintf("custom(%s)", dt.CustomName)
	}
	var b strings.Builder
	b.WriteString(string(dt.Kind))
	switch {
	case dt.Length != nil:
		fmt.Fprintf(&b, "(%d)", *dt.Length)
	case dt.Precision != nil && dt.Scale != nil:
		fmt.Fprintf(&b, "(%d,%d)", *dt.Precision, *dt.Scale)
	case dt.Precision != nil:
		fmt.Fprintf(&b, "(%d)", *dt.Precision)
	}
	if dt.WithTimezone {
		b.WriteString(" with time zone")
	}
	if dt.Charset != "" {
		b.WriteString(" charset " + dt.Charset)
	}
	return b.String()
}

func int64Ptr(v int64) *int64 { return &v }
