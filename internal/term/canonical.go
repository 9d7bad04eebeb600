package term

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a deterministic JSON encoding of t for hashing
// and storage.
//
// Encoding per term type (object keys already in sorted order):
//
//	Value(int64)         {"int":3}
//	Value(*apd.Decimal)  {"decimal":"1.5"}
//	Value(string)        {"string":"s"}
//	Unbound              {"unbound":"i0"}
//	DimUnbound           {"dim":2,"name":"A"}
//	*Node                {"kind":"Shape","operands":[...]}
//
// Strings are NFC normalized and HTML escaping is disabled. Other host
// value types cannot be encoded and return an error.
func MarshalCanonical(t Term) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, t Term) error {
	switch x := t.(type) {
	case Value:
		return marshalCanonicalValue(buf, x)
	case Unbound:
		buf.WriteString(`{"unbound":`)
		if err := marshalCanonicalString(buf, x.Name); err != nil {
			return err
		}
		buf.WriteByte('}')
	case DimUnbound:
		buf.WriteString(`{"dim":`)
		buf.WriteString(strconv.Itoa(x.N))
		buf.WriteString(`,"name":`)
		if err := marshalCanonicalString(buf, x.Name); err != nil {
			return err
		}
		buf.WriteByte('}')
	case *Node:
		buf.WriteString(`{"kind":`)
		if err := marshalCanonicalString(buf, x.kind.Name); err != nil {
			return err
		}
		buf.WriteString(`,"operands":[`)
		for i, op := range x.operands {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, op); err != nil {
				return fmt.Errorf("%s operand %d: %w", x.kind.Name, i, err)
			}
		}
		buf.WriteString("]}")
	default:
		return fmt.Errorf("unsupported term type for canonical JSON: %T", t)
	}
	return nil
}

func marshalCanonicalValue(buf *bytes.Buffer, v Value) error {
	switch x := v.V.(type) {
	case int64:
		buf.WriteString(`{"int":`)
		buf.WriteString(strconv.FormatInt(x, 10))
		buf.WriteByte('}')
	case *apd.Decimal:
		buf.WriteString(`{"decimal":`)
		if err := marshalCanonicalString(buf, x.Text('f')); err != nil {
			return err
		}
		buf.WriteByte('}')
	case string:
		buf.WriteString(`{"string":`)
		if err := marshalCanonicalString(buf, x); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported host value for canonical JSON: %T", v.V)
	}
	return nil
}

// marshalCanonicalString writes s as a JSON string after NFC normalization,
// without HTML escaping.
func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds trailing newline, remove it
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}
