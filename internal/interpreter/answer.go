package interpreter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

// Answer is the backend's "response" field, classified by shape. The
// backend has wrapped its answer differently across revisions, so each
// known wrapping gets its own variant.
type Answer interface {
	isAnswer()
}

// StringAnswer is a plain string response
type StringAnswer struct {
	Value string
}

// NestedOutputAnswer is {"output": X} where X is not an object
type NestedOutputAnswer struct {
	Output json.RawMessage
}

// DoublyNestedOutputAnswer is {"output": {...}}. Output holds the inner
// object's own "output" field when that field is set and truthy.
type DoublyNestedOutputAnswer struct {
	Inner  json.RawMessage
	Output json.RawMessage
}

// OpaqueObjectAnswer is any other shape, including a missing response
type OpaqueObjectAnswer struct {
	Raw json.RawMessage
}

func (StringAnswer) isAnswer()             {}
func (NestedOutputAnswer) isAnswer()       {}
func (DoublyNestedOutputAnswer) isAnswer() {}
func (OpaqueObjectAnswer) isAnswer()       {}

var nullJSON = json.RawMessage("null")

// DecodeAnswer parses an /ask body and classifies its "response" field.
// It only fails when the body is not JSON at all.
func DecodeAnswer(body []byte) (Answer, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse answer: %w", err)
	}

	resp := v.Get("response")
	if resp == nil {
		return OpaqueObjectAnswer{Raw: nullJSON}, nil
	}

	switch resp.Type() {
	case fastjson.TypeString:
		return StringAnswer{Value: string(resp.GetStringBytes())}, nil
	case fastjson.TypeObject:
		output := resp.Get("output")
		if output == nil {
			return OpaqueObjectAnswer{Raw: raw(resp)}, nil
		}
		if output.Type() != fastjson.TypeObject {
			return NestedOutputAnswer{Output: raw(output)}, nil
		}

		answer := DoublyNestedOutputAnswer{Inner: raw(output)}
		if inner := output.Get("output"); inner != nil && truthy(inner) {
			answer.Output = raw(inner)
		}
		return answer, nil
	default:
		return OpaqueObjectAnswer{Raw: raw(resp)}, nil
	}
}

// DisplayText turns an answer into the string shown to the user. Strings
// pass through, everything else becomes indented JSON.
func DisplayText(a Answer) string {
	switch a := a.(type) {
	case StringAnswer:
		return a.Value
	case NestedOutputAnswer:
		return rawText(a.Output)
	case DoublyNestedOutputAnswer:
		if a.Output != nil {
			return rawText(a.Output)
		}
		return rawText(a.Inner)
	case OpaqueObjectAnswer:
		return rawText(a.Raw)
	default:
		panic(fmt.Sprintf("interpreter: unknown answer type %T", a))
	}
}

// raw re-encodes v as standard JSON in key order. fastjson's MarshalTo
// quotes control characters Go-style (\a, \x01), which is not JSON.
func raw(v *fastjson.Value) json.RawMessage {
	return json.RawMessage(appendJSON(nil, v))
}

func appendJSON(dst []byte, v *fastjson.Value) []byte {
	switch v.Type() {
	case fastjson.TypeString:
		return appendString(dst, v.GetStringBytes())
	case fastjson.TypeArray:
		dst = append(dst, '[')
		for i, item := range v.GetArray() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSON(dst, item)
		}
		return append(dst, ']')
	case fastjson.TypeObject:
		dst = append(dst, '{')
		first := true
		v.GetObject().Visit(func(key []byte, item *fastjson.Value) {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendString(dst, key)
			dst = append(dst, ':')
			dst = appendJSON(dst, item)
		})
		return append(dst, '}')
	default:
		return v.MarshalTo(dst)
	}
}

func appendString(dst, s []byte) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(s)); err != nil {
		return append(dst, `""`...)
	}
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...)
}

// truthy treats null, false, "" and 0 as absent
func truthy(v *fastjson.Value) bool {
	switch v.Type() {
	case fastjson.TypeNull, fastjson.TypeFalse:
		return false
	case fastjson.TypeString:
		return len(v.GetStringBytes()) > 0
	case fastjson.TypeNumber:
		return v.GetFloat64() != 0
	default:
		return true
	}
}

func rawText(m json.RawMessage) string {
	if len(m) > 0 && m[0] == '"' {
		var s string
		if err := json.Unmarshal(m, &s); err == nil {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, m, "", "  "); err != nil {
		return string(m)
	}
	return buf.String()
}
