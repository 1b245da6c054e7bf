package params

import "strconv"

// Set is a named hyperparameter mapping. Values are float64 or string after
// a Load; the declared Schema decides what the orchestrator does with them.
type Set map[string]interface{}

// Kind declares how a persisted parameter value is typed on every read.
type Kind int

const (
	// KindInteger values are coerced to int on read. This is the default for
	// any name not present in the schema: the record format stores numbers as
	// floats, so integral parameters always come back 4.0, never 4.
	KindInteger Kind = iota
	// KindFloat values keep the stored numeric value exactly.
	KindFloat
	// KindCategorical values are token strings and pass through untouched.
	KindCategorical
)

// Schema maps parameter names to their declared kind. It is attached to the
// model's constructor contract so a new parameter cannot silently land in the
// wrong coercion bucket.
type Schema map[string]Kind

// TSCTSchema is the declared schema for the TSCT constructor.
var TSCTSchema = Schema{
	"lr":             KindFloat,
	"dropout_ff":     KindFloat,
	"fourie_mode":    KindCategorical,
	"embedding_mode": KindCategorical,
	// Numeric, but consumed exactly as stored; the constructor accepts the
	// record's native representation.
	"max_seq_len": KindFloat,
}

// Coerce applies the schema to a loaded set and returns a new set. The whole
// set is coerced atomically; the input is never mutated. Coercion is
// idempotent: coercing an already-coerced set is a no-op.
func (s Schema) Coerce(in Set) Set {
	out := make(Set, len(in))
	for name, v := range in {
		switch s[name] {
		case KindFloat, KindCategorical:
			out[name] = v
		default:
			out[name] = toInt(v)
		}
	}
	return out
}

func toInt(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case float32:
		return int(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return int(f)
		}
	}
	return v
}
