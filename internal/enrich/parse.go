package enrich

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ccastromar/dictionary-enricher/internal/llm"
)

var (
	ErrMalformedReply     = errors.New("reply is not a single JSON object")
	ErrMissingFields      = errors.New("missing required fields in reply")
	ErrInvalidDescription = errors.New("description is not a string")
	ErrInvalidConfidence  = errors.New("confidence is not numeric")
)

var requiredFields = []string{"group", "description", "confidence"}

// Parsed is a validated reply plus the corrections applied to it.
type Parsed struct {
	Result
	// GroupRejected is set when the group was replaced by categorical;
	// RejectedGroup then holds the raw value ("" and "null" included).
	GroupRejected bool
	RejectedGroup string
	// Clamped is set when confidence was outside [0,1].
	Clamped bool
}

// ParseReply turns a raw model reply into a Result. On error the Parsed value is
// zero and callers substitute DefaultResult.
func ParseReply(reply string) (Parsed, error) {
	text := llm.StripCodeFence(reply)

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if fields == nil {
		return Parsed{}, fmt.Errorf("%w: null", ErrMalformedReply)
	}
	if dec.More() {
		return Parsed{}, fmt.Errorf("%w: trailing data", ErrMalformedReply)
	}

	var missing []string
	for _, k := range requiredFields {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Parsed{}, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	var out Parsed

	var desc string
	if raw := bytes.TrimSpace(fields["description"]); bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &desc) != nil {
		return Parsed{}, fmt.Errorf("%w: got %s", ErrInvalidDescription, jsonKind(raw))
	}
	out.Description = desc

	conf, err := parseConfidence(fields["confidence"])
	if err != nil {
		return Parsed{}, err
	}
	out.Confidence = Clamp(conf)
	out.Clamped = out.Confidence != conf

	var g string
	if raw := bytes.TrimSpace(fields["group"]); bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &g) != nil {
		g = string(raw)
	}
	if Group(g).Valid() {
		out.Group = Group(g)
	} else {
		out.Group = GroupCategorical
		out.GroupRejected = true
		out.RejectedGroup = g
	}

	return out, nil
}

// parseConfidence accepts a JSON number or a string holding one.
func parseConfidence(raw json.RawMessage) (float64, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidConfidence, jsonKind(bytes.TrimSpace(raw)))
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, fmt.Errorf("%w: got %s", ErrInvalidConfidence, jsonKind(bytes.TrimSpace(raw)))
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidConfidence, jsonKind(bytes.TrimSpace(raw)))
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidConfidence, jsonKind(bytes.TrimSpace(raw)))
	}
	return f, nil
}

// jsonKind names the JSON type of raw without echoing its content.
func jsonKind(raw []byte) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	return "number"
}
