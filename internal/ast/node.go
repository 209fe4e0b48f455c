package ast

// NodeType is the tag the engine puts in the "type" field of every node.
type NodeType string

const (
	TypeRoot        NodeType = "root"
	TypeString      NodeType = "string"
	TypeWhiteSpace  NodeType = "whitespace"
	TypeParbreak    NodeType = "parbreak"
	TypeComment     NodeType = "comment"
	TypeMacro       NodeType = "macro"
	TypeEnvironment NodeType = "environment"
	TypeMathEnv     NodeType = "mathenv"
	TypeVerbatim    NodeType = "verbatim"
	TypeDisplayMath NodeType = "displaymath"
	TypeInlineMath  NodeType = "inlinemath"
	TypeGroup       NodeType = "group"
	TypeVerb        NodeType = "verb"
	TypeArgument    NodeType = "argument"

	// TypeError is never produced by the engine; it tags the fallback node
	// built for a tag this package does not know.
	TypeError NodeType = "error"
)

// Node is one element of the document tree. The set of implementations is
// closed: only the types in this file satisfy it.
type Node interface {
	Type() NodeType
	node()
}

// Base holds the metadata every node except Error may carry.
type Base struct {
	RenderInfo *RenderInfo  `json:"renderInfo,omitempty"`
	Position   PositionInfo `json:"position"`
}

type Root struct {
	Base
	Content []Node `json:"content"`
}

type String struct {
	Base
	Content string `json:"content"`
}

type WhiteSpace struct {
	Base
}

type Parbreak struct {
	Base
}

type Comment struct {
	Base
	Content           string `json:"content"`
	Sameline          bool   `json:"sameline"`
	SuffixParbreak    bool   `json:"suffixParbreak"`
	LeadingWhitespace bool   `json:"leadingWhitespace"`
}

// Macro is a control sequence. Content holds the macro name without the
// escape token.
type Macro struct {
	Base
	Content     string      `json:"content"`
	EscapeToken *string     `json:"escapeToken,omitempty"`
	Args        []*Argument `json:"args"`
}

type Environment struct {
	Base
	Env     string      `json:"env"`
	Args    []*Argument `json:"args"`
	Content []Node      `json:"content"`
}

// MathEnv is an environment whose body is in math mode, such as align.
type MathEnv struct {
	Base
	Env     string      `json:"env"`
	Args    []*Argument `json:"args"`
	Content []Node      `json:"content"`
}

// VerbatimEnvironment keeps its body as raw, unparsed text.
type VerbatimEnvironment struct {
	Base
	Env     string `json:"env"`
	Content string `json:"content"`
}

type DisplayMath struct {
	Base
	Content []Node `json:"content"`
}

type InlineMath struct {
	Base
	Content []Node `json:"content"`
}

type Group struct {
	Base
	Content []Node `json:"content"`
}

// Verb is an inline verbatim such as \verb|x|. Escape is the delimiter.
type Verb struct {
	Base
	Env     string `json:"env"`
	Escape  string `json:"escape"`
	Content string `json:"content"`
}

type Argument struct {
	Base
	OpenMark  string `json:"openMark"`
	CloseMark string `json:"closeMark"`
	Content   []Node `json:"content"`
}

// Error stands in for a subtree whose tag is unknown.
type Error struct{}

func (*Root) Type() NodeType                { return TypeRoot }
func (*String) Type() NodeType              { return TypeString }
func (*WhiteSpace) Type() NodeType          { return TypeWhiteSpace }
func (*Parbreak) Type() NodeType            { return TypeParbreak }
func (*Comment) Type() NodeType             { return TypeComment }
func (*Macro) Type() NodeType               { return TypeMacro }
func (*Environment) Type() NodeType         { return TypeEnvironment }
func (*MathEnv) Type() NodeType             { return TypeMathEnv }
func (*VerbatimEnvironment) Type() NodeType { return TypeVerbatim }
func (*DisplayMath) Type() NodeType         { return TypeDisplayMath }
func (*InlineMath) Type() NodeType          { return TypeInlineMath }
func (*Group) Type() NodeType               { return TypeGroup }
func (*Verb) Type() NodeType                { return TypeVerb }
func (*Argument) Type() NodeType            { return TypeArgument }
func (*Error) Type() NodeType               { return TypeError }

func (*Root) node()                {}
func (*String) node()              {}
func (*WhiteSpace) node()          {}
func (*Parbreak) node()            {}
func (*Comment) node()             {}
func (*Macro) node()               {}
func (*Environment) node()         {}
func (*MathEnv) node()             {}
func (*VerbatimEnvironment) node() {}
func (*DisplayMath) node()         {}
func (*InlineMath) node()          {}
func (*Group) node()               {}
func (*Verb) node()                {}
func (*Argument) node()            {}
func (*Error) node()               {}
