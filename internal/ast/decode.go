package ast

import (
	"math"
	"reflect"
	"strconv"

	"github.com/dop251/goja"

	"unlatex/internal/errs"
)

// decoder turns a present, non-null engine value into V. key is only used
// for error reporting.
type decoder[V any] func(key string, v goja.Value) (V, error)

// field reads obj[key]. A missing, undefined or null value yields the zero V;
// anything else goes through decode.
func field[V any](obj *goja.Object, key string, decode decoder[V]) (V, error) {
	v := obj.Get(key)
	if isAbsent(v) {
		var zero V
		return zero, nil
	}
	return decode(key, v)
}

func isAbsent(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// typeOf names v the way JavaScript's typeof would, with "array" and "null"
// split out.
func typeOf(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if _, ok := goja.AssertFunction(v); ok {
		return "function"
	}
	if obj, ok := v.(*goja.Object); ok {
		if obj.ClassName() == "Array" {
			return "array"
		}
		return "object"
	}
	t := v.ExportType()
	if t == nil {
		return "undefined"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}
	return t.String()
}

func asString(key string, v goja.Value) (string, error) {
	if got := typeOf(v); got != "string" {
		return "", errs.NewConversion(key, got, "string")
	}
	return v.String(), nil
}

func asOptString(key string, v goja.Value) (*string, error) {
	s, err := asString(key, v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func asBool(key string, v goja.Value) (bool, error) {
	if got := typeOf(v); got != "boolean" {
		return false, errs.NewConversion(key, got, "boolean")
	}
	return v.ToBoolean(), nil
}

func asUint(key string, v goja.Value) (uint, error) {
	if got := typeOf(v); got != "number" {
		return 0, errs.NewConversion(key, got, "unsigned")
	}
	f := v.ToFloat()
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= 1<<64 || f != math.Trunc(f) {
		return 0, errs.NewConversion(key, "number", "unsigned")
	}
	return uint(f), nil
}

func asObject(key string, v goja.Value) (*goja.Object, error) {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil, errs.NewConversion(key, typeOf(v), "object")
	}
	return obj, nil
}

// asArray returns the elements of a JavaScript array in index order.
func asArray(key string, v goja.Value) ([]goja.Value, error) {
	if got := typeOf(v); got != "array" {
		return nil, errs.NewConversion(key, got, "array")
	}
	obj := v.(*goja.Object)
	n := obj.Get("length").ToInteger()
	out := make([]goja.Value, 0, n)
	for i := int64(0); i < n; i++ {
		out = append(out, obj.Get(strconv.FormatInt(i, 10)))
	}
	return out, nil
}

// asOptStrings decodes an array whose elements are strings or null.
func asOptStrings(key string, v goja.Value) ([]*string, error) {
	elems, err := asArray(key, v)
	if err != nil {
		return nil, err
	}
	out := make([]*string, 0, len(elems))
	for _, e := range elems {
		if isAbsent(e) {
			out = append(out, nil)
			continue
		}
		s, err := asOptString(key, e)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// asNodes rebuilds every element; the first failing element fails the whole
// sequence.
func asNodes(key string, v goja.Value) ([]Node, error) {
	elems, err := asArray(key, v)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(elems))
	for _, e := range elems {
		n, err := decodeNode(key, e)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func asArguments(key string, v goja.Value) ([]*Argument, error) {
	elems, err := asArray(key, v)
	if err != nil {
		return nil, err
	}
	out := make([]*Argument, 0, len(elems))
	for _, e := range elems {
		obj, err := asObject(key, e)
		if err != nil {
			return nil, err
		}
		arg, err := decodeArgument(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

func asPosition(key string, v goja.Value) (Position, error) {
	obj, err := asObject(key, v)
	if err != nil {
		return Position{}, err
	}
	var p Position
	if p.Line, err = field(obj, "line", asUint); err != nil {
		return Position{}, err
	}
	if p.Offset, err = field(obj, "offset", asUint); err != nil {
		return Position{}, err
	}
	if p.Column, err = field(obj, "column", asUint); err != nil {
		return Position{}, err
	}
	return p, nil
}

func asPositionInfo(key string, v goja.Value) (PositionInfo, error) {
	obj, err := asObject(key, v)
	if err != nil {
		return PositionInfo{}, err
	}
	var p PositionInfo
	if p.Start, err = field(obj, "start", asPosition); err != nil {
		return PositionInfo{}, err
	}
	if p.End, err = field(obj, "end", asPosition); err != nil {
		return PositionInfo{}, err
	}
	return p, nil
}

func asRenderInfo(key string, v goja.Value) (*RenderInfo, error) {
	obj, err := asObject(key, v)
	if err != nil {
		return nil, err
	}
	var ri RenderInfo
	bools := []struct {
		key string
		dst *bool
	}{
		{"alignContent", &ri.AlignContent},
		{"inParMode", &ri.InParMode},
		{"pgfkeysArgs", &ri.PgfkeysArgs},
		{"breakAround", &ri.BreakAround},
		{"inMathMode", &ri.InMathMode},
		{"hangingIndent", &ri.HangingIndent},
	}
	for _, b := range bools {
		if *b.dst, err = field(obj, b.key, asBool); err != nil {
			return nil, err
		}
	}
	if ri.NamedArguments, err = field(obj, "namedArguments", asOptStrings); err != nil {
		return nil, err
	}
	return &ri, nil
}

func decodeBase(obj *goja.Object) (Base, error) {
	var b Base
	var err error
	if b.RenderInfo, err = field(obj, "_renderInfo", asRenderInfo); err != nil {
		return Base{}, err
	}
	if b.Position, err = field(obj, "position", asPositionInfo); err != nil {
		return Base{}, err
	}
	return b, nil
}

func decodeArgument(obj *goja.Object) (*Argument, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	n := &Argument{Base: base}
	if n.OpenMark, err = field(obj, "openMark", asString); err != nil {
		return nil, err
	}
	if n.CloseMark, err = field(obj, "closeMark", asString); err != nil {
		return nil, err
	}
	if n.Content, err = field(obj, "content", asNodes); err != nil {
		return nil, err
	}
	return n, nil
}

// DecodeNode rebuilds the typed tree for an engine value. A node whose tag is
// not known becomes *Error and does not fail the conversion; a value that is
// not a tagged object does.
func DecodeNode(v goja.Value) (Node, error) {
	return decodeNode("", v)
}

func decodeNode(key string, v goja.Value) (Node, error) {
	obj, err := asObject(key, v)
	if err != nil {
		return nil, err
	}
	tag, err := asString("type", obj.Get("type"))
	if err != nil {
		return nil, err
	}

	switch NodeType(tag) {
	case TypeRoot:
		return decodeContainer(obj, func(b Base, c []Node) Node { return &Root{Base: b, Content: c} })
	case TypeDisplayMath:
		return decodeContainer(obj, func(b Base, c []Node) Node { return &DisplayMath{Base: b, Content: c} })
	case TypeInlineMath:
		return decodeContainer(obj, func(b Base, c []Node) Node { return &InlineMath{Base: b, Content: c} })
	case TypeGroup:
		return decodeContainer(obj, func(b Base, c []Node) Node { return &Group{Base: b, Content: c} })
	case TypeString:
		return decodeString(obj)
	case TypeWhiteSpace:
		base, err := decodeBase(obj)
		if err != nil {
			return nil, err
		}
		return &WhiteSpace{Base: base}, nil
	case TypeParbreak:
		base, err := decodeBase(obj)
		if err != nil {
			return nil, err
		}
		return &Parbreak{Base: base}, nil
	case TypeComment:
		return decodeComment(obj)
	case TypeMacro:
		return decodeMacro(obj)
	case TypeEnvironment:
		env, args, content, base, err := decodeEnvFields(obj)
		if err != nil {
			return nil, err
		}
		return &Environment{Base: base, Env: env, Args: args, Content: content}, nil
	case TypeMathEnv:
		env, args, content, base, err := decodeEnvFields(obj)
		if err != nil {
			return nil, err
		}
		return &MathEnv{Base: base, Env: env, Args: args, Content: content}, nil
	case TypeVerbatim:
		return decodeVerbatim(obj)
	case TypeVerb:
		return decodeVerb(obj)
	case TypeArgument:
		return decodeArgument(obj)
	default:
		return &Error{}, nil
	}
}

func decodeContainer(obj *goja.Object, build func(Base, []Node) Node) (Node, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	content, err := field(obj, "content", asNodes)
	if err != nil {
		return nil, err
	}
	return build(base, content), nil
}

func decodeString(obj *goja.Object) (Node, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	content, err := field(obj, "content", asString)
	if err != nil {
		return nil, err
	}
	return &String{Base: base, Content: content}, nil
}

func decodeComment(obj *goja.Object) (Node, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	n := &Comment{Base: base}
	if n.Content, err = field(obj, "content", asString); err != nil {
		return nil, err
	}
	if n.Sameline, err = field(obj, "sameline", asBool); err != nil {
		return nil, err
	}
	if n.SuffixParbreak, err = field(obj, "suffixParbreak", asBool); err != nil {
		return nil, err
	}
	if n.LeadingWhitespace, err = field(obj, "leadingWhitespace", asBool); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeMacro(obj *goja.Object) (Node, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	n := &Macro{Base: base}
	if n.Content, err = field(obj, "content", asString); err != nil {
		return nil, err
	}
	if n.EscapeToken, err = field(obj, "escapeToken", asOptString); err != nil {
		return nil, err
	}
	if n.Args, err = field(obj, "args", asArguments); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeEnvFields(obj *goja.Object) (env string, args []*Argument, content []Node, base Base, err error) {
	if base, err = decodeBase(obj); err != nil {
		return
	}
	if env, err = field(obj, "env", asString); err != nil {
		return
	}
	if args, err = field(obj, "args", asArguments); err != nil {
		return
	}
	content, err = field(obj, "content", asNodes)
	return
}

func decodeVerbatim(obj *goja.Object) (Node, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	n := &VerbatimEnvironment{Base: base}
	if n.Env, err = field(obj, "env", asString); err != nil {
		return nil, err
	}
	if n.Content, err = field(obj, "content", asString); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeVerb(obj *goja.Object) (Node, error) {
	base, err := decodeBase(obj)
	if err != nil {
		return nil, err
	}
	n := &Verb{Base: base}
	if n.Env, err = field(obj, "env", asString); err != nil {
		return nil, err
	}
	if n.Escape, err = field(obj, "escape", asString); err != nil {
		return nil, err
	}
	if n.Content, err = field(obj, "content", asString); err != nil {
		return nil, err
	}
	return n, nil
}

// DecodeRoot rebuilds a tree that must be rooted at a "root" node.
func DecodeRoot(v goja.Value) (*Root, error) {
	n, err := DecodeNode(v)
	if err != nil {
		return nil, err
	}
	root, ok := n.(*Root)
	if !ok {
		return nil, errs.NewConversion("", string(n.Type()), string(TypeRoot))
	}
	return root, nil
}

// DecodeInfo reads macro or environment signature metadata.
func DecodeInfo(v goja.Value) (*Info, error) {
	obj, err := asObject("", v)
	if err != nil {
		return nil, err
	}
	info := &Info{}
	if info.RenderInfo, err = field(obj, "renderInfo", asRenderInfo); err != nil {
		return nil, err
	}
	if info.ProcessContent, err = field(obj, "processContent", asNodes); err != nil {
		return nil, err
	}
	if info.Signature, err = field(obj, "signature", asOptString); err != nil {
		return nil, err
	}
	if info.EscapeToken, err = field(obj, "escapeToken", asOptString); err != nil {
		return nil, err
	}
	return info, nil
}
