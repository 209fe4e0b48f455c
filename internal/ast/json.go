package ast

import "encoding/json"

// tagged marshals v and prepends the "type" discriminator.
func tagged(t NodeType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(string(t))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+len(head)+10)
	out = append(out, `{"type":`...)
	out = append(out, head...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

func (n *Root) MarshalJSON() ([]byte, error) {
	type plain Root
	return tagged(n.Type(), (*plain)(n))
}

func (n *String) MarshalJSON() ([]byte, error) {
	type plain String
	return tagged(n.Type(), (*plain)(n))
}

func (n *WhiteSpace) MarshalJSON() ([]byte, error) {
	type plain WhiteSpace
	return tagged(n.Type(), (*plain)(n))
}

func (n *Parbreak) MarshalJSON() ([]byte, error) {
	type plain Parbreak
	return tagged(n.Type(), (*plain)(n))
}

func (n *Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	return tagged(n.Type(), (*plain)(n))
}

func (n *Macro) MarshalJSON() ([]byte, error) {
	type plain Macro
	return tagged(n.Type(), (*plain)(n))
}

func (n *Environment) MarshalJSON() ([]byte, error) {
	type plain Environment
	return tagged(n.Type(), (*plain)(n))
}

func (n *MathEnv) MarshalJSON() ([]byte, error) {
	type plain MathEnv
	return tagged(n.Type(), (*plain)(n))
}

func (n *VerbatimEnvironment) MarshalJSON() ([]byte, error) {
	type plain VerbatimEnvironment
	return tagged(n.Type(), (*plain)(n))
}

func (n *DisplayMath) MarshalJSON() ([]byte, error) {
	type plain DisplayMath
	return tagged(n.Type(), (*plain)(n))
}

func (n *InlineMath) MarshalJSON() ([]byte, error) {
	type plain InlineMath
	return tagged(n.Type(), (*plain)(n))
}

func (n *Group) MarshalJSON() ([]byte, error) {
	type plain Group
	return tagged(n.Type(), (*plain)(n))
}

func (n *Verb) MarshalJSON() ([]byte, error) {
	type plain Verb
	return tagged(n.Type(), (*plain)(n))
}

func (n *Argument) MarshalJSON() ([]byte, error) {
	type plain Argument
	return tagged(n.Type(), (*plain)(n))
}

func (n *Error) MarshalJSON() ([]byte, error) {
	return tagged(n.Type(), struct{}{})
}
