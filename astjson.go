package fdlc

import (
	"encoding/json"
	"fmt"
)

// exprEnvelope is the wire shape for one ANF node: a discriminator tag
// plus only the fields that node kind uses. Expr is a closed interface
// (spec §9 "tagged sum types"), so decoding it requires exactly this
// kind of envelope instead of encoding/json's normal concrete-type
// dispatch (SPEC_FULL.md §6, "ANF tree on the wire").
type exprEnvelope struct {
	Kind string `json:"kind"`
	Tag  Tag    `json:"tag"`

	Value  *int    `json:"value,omitempty"`
	Bool   *bool   `json:"bool,omitempty"`
	Name   string  `json:"name,omitempty"`
	Bind   string  `json:"bind,omitempty"`
	Op1    *string `json:"op1,omitempty"`
	Op2    *string `json:"op2,omitempty"`
	Params []string `json:"params,omitempty"`

	Rhs    json.RawMessage   `json:"rhs,omitempty"`
	Body   json.RawMessage   `json:"body,omitempty"`
	Cond   json.RawMessage   `json:"cond,omitempty"`
	Then   json.RawMessage   `json:"then,omitempty"`
	Else   json.RawMessage   `json:"else,omitempty"`
	Arg    json.RawMessage   `json:"arg,omitempty"`
	Left   json.RawMessage   `json:"left,omitempty"`
	Right  json.RawMessage   `json:"right,omitempty"`
	Tup    json.RawMessage   `json:"tup,omitempty"`
	Index  json.RawMessage   `json:"index,omitempty"`
	Callee json.RawMessage   `json:"callee,omitempty"`
	Items  []json.RawMessage `json:"items,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
}

var prim1Names = map[Prim1Op]string{
	OpAdd1:  "add1",
	OpSub1:  "sub1",
	OpIsNum: "isnum",
	OpIsBool: "isbool",
	OpPrint: "print",
}

var prim1Values = map[string]Prim1Op{}

var prim2Names = map[Prim2Op]string{
	OpPlus:    "plus",
	OpMinus:   "minus",
	OpTimes:   "times",
	OpLess:    "less",
	OpGreater: "greater",
	OpEqual:   "equal",
}

var prim2Values = map[string]Prim2Op{}

func init() {
	for k, v := range prim1Names {
		prim1Values[v] = k
	}
	for k, v := range prim2Names {
		prim2Values[v] = k
	}
}

// EncodeExpr marshals an ANF tree to its envelope form (SPEC_FULL.md
// §6 — the JSON shape cmd/fdlc reads as input).
func EncodeExpr(e Expr) ([]byte, error) {
	env, err := toEnvelope(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// DecodeExpr unmarshals the envelope form produced by EncodeExpr back
// into an Expr tree.
func DecodeExpr(data []byte) (Expr, error) {
	var env exprEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("fdlc: decoding expr: %w", err)
	}
	return fromEnvelope(env)
}

func toEnvelope(e Expr) (exprEnvelope, error) {
	switch n := e.(type) {
	case Number:
		v := n.Value
		return exprEnvelope{Kind: "number", Tag: n.Tg, Value: &v}, nil
	case Boolean:
		v := n.Value
		return exprEnvelope{Kind: "boolean", Tag: n.Tg, Bool: &v}, nil
	case Id:
		return exprEnvelope{Kind: "id", Tag: n.Tg, Name: n.Name}, nil
	case Let:
		rhs, err := marshalChild(n.Rhs)
		if err != nil {
			return exprEnvelope{}, err
		}
		body, err := marshalChild(n.Body)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "let", Tag: n.Tg, Bind: n.Bind, Rhs: rhs, Body: body}, nil
	case If:
		cond, err := marshalChild(n.Cond)
		if err != nil {
			return exprEnvelope{}, err
		}
		then, err := marshalChild(n.Then)
		if err != nil {
			return exprEnvelope{}, err
		}
		els, err := marshalChild(n.Else)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "if", Tag: n.Tg, Cond: cond, Then: then, Else: els}, nil
	case Prim1:
		arg, err := marshalChild(n.Arg)
		if err != nil {
			return exprEnvelope{}, err
		}
		op := prim1Names[n.Op]
		return exprEnvelope{Kind: "prim1", Tag: n.Tg, Op1: &op, Arg: arg}, nil
	case Prim2:
		left, err := marshalChild(n.Left)
		if err != nil {
			return exprEnvelope{}, err
		}
		right, err := marshalChild(n.Right)
		if err != nil {
			return exprEnvelope{}, err
		}
		op := prim2Names[n.Op]
		return exprEnvelope{Kind: "prim2", Tag: n.Tg, Op2: &op, Left: left, Right: right}, nil
	case Tuple:
		items, err := marshalChildren(n.Items)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "tuple", Tag: n.Tg, Items: items}, nil
	case GetItem:
		tup, err := marshalChild(n.Tup)
		if err != nil {
			return exprEnvelope{}, err
		}
		index, err := marshalChild(n.Index)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "getitem", Tag: n.Tg, Tup: tup, Index: index}, nil
	case Lam:
		body, err := marshalChild(n.Body)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "lam", Tag: n.Tg, Params: n.Params, Body: body}, nil
	case Fun:
		body, err := marshalChild(n.Body)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "fun", Tag: n.Tg, Name: n.Name, Params: n.Params, Body: body}, nil
	case App:
		callee, err := marshalChild(n.Callee)
		if err != nil {
			return exprEnvelope{}, err
		}
		args, err := marshalChildren(n.Args)
		if err != nil {
			return exprEnvelope{}, err
		}
		return exprEnvelope{Kind: "app", Tag: n.Tg, Callee: callee, Args: args}, nil
	default:
		return exprEnvelope{}, fmt.Errorf("fdlc: encoding expr: unknown node type %T", e)
	}
}

func marshalChild(e Expr) (json.RawMessage, error) {
	env, err := toEnvelope(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func marshalChildren(es []Immediate) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(es))
	for i, e := range es {
		raw, err := marshalChild(e)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func fromEnvelope(env exprEnvelope) (Expr, error) {
	switch env.Kind {
	case "number":
		if env.Value == nil {
			return nil, fmt.Errorf("fdlc: number node missing value")
		}
		return Number{Value: *env.Value, Tg: env.Tag}, nil
	case "boolean":
		if env.Bool == nil {
			return nil, fmt.Errorf("fdlc: boolean node missing bool")
		}
		return Boolean{Value: *env.Bool, Tg: env.Tag}, nil
	case "id":
		return Id{Name: env.Name, Tg: env.Tag}, nil
	case "let":
		rhs, err := unmarshalChild(env.Rhs)
		if err != nil {
			return nil, err
		}
		body, err := unmarshalChild(env.Body)
		if err != nil {
			return nil, err
		}
		return Let{Bind: env.Bind, Rhs: rhs, Body: body, Tg: env.Tag}, nil
	case "if":
		cond, err := unmarshalImmediate(env.Cond)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalChild(env.Then)
		if err != nil {
			return nil, err
		}
		els, err := unmarshalChild(env.Else)
		if err != nil {
			return nil, err
		}
		return If{Cond: cond, Then: then, Else: els, Tg: env.Tag}, nil
	case "prim1":
		if env.Op1 == nil {
			return nil, fmt.Errorf("fdlc: prim1 node missing op1")
		}
		op, ok := prim1Values[*env.Op1]
		if !ok {
			return nil, fmt.Errorf("fdlc: unknown prim1 op %q", *env.Op1)
		}
		arg, err := unmarshalImmediate(env.Arg)
		if err != nil {
			return nil, err
		}
		return Prim1{Op: op, Arg: arg, Tg: env.Tag}, nil
	case "prim2":
		if env.Op2 == nil {
			return nil, fmt.Errorf("fdlc: prim2 node missing op2")
		}
		op, ok := prim2Values[*env.Op2]
		if !ok {
			return nil, fmt.Errorf("fdlc: unknown prim2 op %q", *env.Op2)
		}
		left, err := unmarshalImmediate(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := unmarshalImmediate(env.Right)
		if err != nil {
			return nil, err
		}
		return Prim2{Op: op, Left: left, Right: right, Tg: env.Tag}, nil
	case "tuple":
		items, err := unmarshalImmediates(env.Items)
		if err != nil {
			return nil, err
		}
		return Tuple{Items: items, Tg: env.Tag}, nil
	case "getitem":
		tup, err := unmarshalImmediate(env.Tup)
		if err != nil {
			return nil, err
		}
		index, err := unmarshalImmediate(env.Index)
		if err != nil {
			return nil, err
		}
		return GetItem{Tup: tup, Index: index, Tg: env.Tag}, nil
	case "lam":
		body, err := unmarshalChild(env.Body)
		if err != nil {
			return nil, err
		}
		return Lam{Params: env.Params, Body: body, Tg: env.Tag}, nil
	case "fun":
		body, err := unmarshalChild(env.Body)
		if err != nil {
			return nil, err
		}
		return Fun{Name: env.Name, Params: env.Params, Body: body, Tg: env.Tag}, nil
	case "app":
		callee, err := unmarshalImmediate(env.Callee)
		if err != nil {
			return nil, err
		}
		args, err := unmarshalImmediates(env.Args)
		if err != nil {
			return nil, err
		}
		return App{Callee: callee, Args: args, Tg: env.Tag}, nil
	default:
		return nil, fmt.Errorf("fdlc: decoding expr: unknown kind %q", env.Kind)
	}
}

func unmarshalChild(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("fdlc: decoding expr: missing child node")
	}
	var env exprEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return fromEnvelope(env)
}

func unmarshalImmediate(raw json.RawMessage) (Immediate, error) {
	e, err := unmarshalChild(raw)
	if err != nil {
		return nil, err
	}
	imm, ok := e.(Immediate)
	if !ok {
		return nil, fmt.Errorf("fdlc: decoding expr: node %T is not immediate", e)
	}
	return imm, nil
}

func unmarshalImmediates(raws []json.RawMessage) ([]Immediate, error) {
	out := make([]Immediate, len(raws))
	for i, raw := range raws {
		imm, err := unmarshalImmediate(raw)
		if err != nil {
			return nil, err
		}
		out[i] = imm
	}
	return out, nil
}
