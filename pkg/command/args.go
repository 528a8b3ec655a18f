package command

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/tags"
)

// ParamType is the declared type of a command parameter.
type ParamType int

const (
	TypeString ParamType = iota + 1
	TypeInt
	TypeFloat
	TypeBool
	TypeEnum
	TypeAmount
	TypeList
)

func (t ParamType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeEnum:
		return "enum"
	case TypeAmount:
		return "amount"
	case TypeList:
		return "list"
	}
	return "unknown"
}

// ParamSpec declares one parameter of a command.
type ParamSpec struct {
	Name     string
	Type     ParamType
	Required bool
	Default  string   // raw text, coerced like a written value
	Enum     []string // allowed lowercase values for TypeEnum
}

// Value is a coerced parameter. Only the field matching Type is set.
type Value struct {
	Type   ParamType
	Raw    string
	Str    string
	Int    int
	Float  float64
	Bool   bool
	Amount Amount
	List   []string
}

// Args holds the typed parameters of one command. Names compare
// case-insensitively.
type Args struct {
	values map[string]Value
	extras []string
}

func (a Args) get(name string) (Value, bool) {
	v, ok := a.values[strings.ToLower(name)]
	return v, ok
}

// Has reports whether the parameter was written or has a default.
func (a Args) Has(name string) bool {
	_, ok := a.get(name)
	return ok
}

func (a Args) String(name string) string {
	v, _ := a.get(name)
	return v.Str
}

func (a Args) Int(name string) int {
	v, _ := a.get(name)
	return v.Int
}

func (a Args) Float(name string) float64 {
	v, _ := a.get(name)
	return v.Float
}

func (a Args) Bool(name string) bool {
	v, _ := a.get(name)
	return v.Bool
}

func (a Args) Amount(name string) (Amount, bool) {
	v, ok := a.get(name)
	if !ok || v.Type != TypeAmount {
		return Amount{}, false
	}
	return v.Amount, true
}

func (a Args) List(name string) []string {
	v, _ := a.get(name)
	return v.List
}

// Extras returns undeclared parameter names in written order.
func (a Args) Extras() []string { return a.extras }

// Extra returns an undeclared parameter's value.
func (a Args) Extra(name string) Value {
	v, _ := a.get(name)
	return v
}

func (a *Args) set(name string, v Value) {
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	a.values[strings.ToLower(name)] = v
}

// NewArgs builds Args directly from typed values, for callers that
// construct commands without text.
func NewArgs(values map[string]Value) Args {
	var a Args
	for k, v := range values {
		a.set(k, v)
	}
	return a
}

// coerce converts raw text to the declared type.
func coerce(spec ParamSpec, raw string) (Value, error) {
	v := Value{Type: spec.Type, Raw: raw}
	switch spec.Type {
	case TypeString:
		v.Str = strings.TrimSpace(raw)
	case TypeInt:
		n, err := parseInt(raw)
		if err != nil {
			return Value{}, err
		}
		v.Int = n
		v.Float = float64(n)
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("invalid float %q", raw)
		}
		v.Float = f
	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			v.Bool = true
		case "false":
		default:
			return Value{}, fmt.Errorf("invalid bool %q", raw)
		}
	case TypeEnum:
		s := strings.ToLower(strings.TrimSpace(raw))
		if !slices.Contains(spec.Enum, s) {
			return Value{}, fmt.Errorf("%q is not one of %v", raw, spec.Enum)
		}
		v.Str = s
	case TypeAmount:
		amt, err := ParseAmount(raw)
		if err != nil {
			return Value{}, err
		}
		v.Amount = amt
	case TypeList:
		list, err := parseList(raw)
		if err != nil {
			return Value{}, err
		}
		v.List = list
	default:
		return Value{}, fmt.Errorf("unsupported parameter type %d", spec.Type)
	}
	if spec.Type != TypeString && spec.Type != TypeEnum {
		v.Str = strings.TrimSpace(raw)
	}
	return v, nil
}

// MaxIntParam bounds integer parameters so that quantities, damage and
// durations built from them cannot overflow when combined.
const MaxIntParam = 1_000_000_000_000

func parseInt(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid int %q", raw)
	}
	if math.Abs(f) > MaxIntParam {
		return 0, fmt.Errorf("int %q out of range", raw)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	return roundInt(f), nil
}

// parseList accepts a JSON array or a '|' separated string. Array elements
// that are objects contribute their "text" or "name" field.
func parseList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") {
		var out []string
		for _, part := range strings.Split(s, "|") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}

	var items []any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("invalid list %q: %w", raw, err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch x := it.(type) {
		case string:
			out = append(out, x)
		case map[string]any:
			if t, ok := x["text"].(string); ok {
				out = append(out, t)
			} else if n, ok := x["name"].(string); ok {
				out = append(out, n)
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out, nil
}

// Coerce builds a typed Command from parsed parameters. A missing or
// unparseable required parameter fails with ErrMalformed. An unparseable
// optional parameter falls back to its default and is reported in warnings.
func (d Definition) Coerce(params tags.Params) (Command, []string, error) {
	cmd := Command{Kind: d.Kind}
	var warnings []string
	declared := make(map[string]bool, len(d.Params))

	for _, spec := range d.Params {
		declared[strings.ToLower(spec.Name)] = true
		raw, written := params.Get(spec.Name)
		if written {
			v, err := coerce(spec, raw)
			if err == nil && spec.Required && v.Str == "" && v.Type == TypeString {
				err = fmt.Errorf("empty value")
			}
			if err == nil {
				cmd.Args.set(spec.Name, v)
				continue
			}
			if spec.Required {
				return Command{}, warnings, fmt.Errorf("%w: %s: parameter %s: %v", ErrMalformed, d.Kind, spec.Name, err)
			}
			warnings = append(warnings, fmt.Sprintf("parameter %s: %v; using default", spec.Name, err))
		} else if spec.Required {
			return Command{}, warnings, fmt.Errorf("%w: %s: missing parameter %s", ErrMalformed, d.Kind, spec.Name)
		}
		if spec.Default != "" {
			v, err := coerce(spec, spec.Default)
			if err != nil {
				return Command{}, warnings, fmt.Errorf("%s: bad default for %s: %w", d.Kind, spec.Name, err)
			}
			cmd.Args.set(spec.Name, v)
		}
	}

	for _, p := range params {
		if declared[strings.ToLower(p.Key)] {
			continue
		}
		if d.Extra == 0 {
			warnings = append(warnings, fmt.Sprintf("ignoring undeclared parameter %s", p.Key))
			continue
		}
		v, err := coerce(ParamSpec{Name: p.Key, Type: d.Extra}, p.Value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("parameter %s: %v; ignored", p.Key, err))
			continue
		}
		if !cmd.Args.Has(p.Key) {
			cmd.Args.extras = append(cmd.Args.extras, p.Key)
		}
		cmd.Args.set(p.Key, v)
	}
	return cmd, warnings, nil
}
