package ast

// Walk calls fn for n and then for every node below it, depth first in source
// order. Macro and environment arguments are visited before the body. When fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Root:
		walkList(n.Content, fn)
	case *Macro:
		walkArgs(n.Args, fn)
	case *Environment:
		walkArgs(n.Args, fn)
		walkList(n.Content, fn)
	case *MathEnv:
		walkArgs(n.Args, fn)
		walkList(n.Content, fn)
	case *DisplayMath:
		walkList(n.Content, fn)
	case *InlineMath:
		walkList(n.Content, fn)
	case *Group:
		walkList(n.Content, fn)
	case *Argument:
		walkList(n.Content, fn)
	}
}

func walkList(nodes []Node, fn func(Node) bool) {
	for _, c := range nodes {
		Walk(c, fn)
	}
}

func walkArgs(args []*Argument, fn func(Node) bool) {
	for _, a := range args {
		if a != nil {
			Walk(a, fn)
		}
	}
}

// CountUnknown returns the number of fallback Error nodes in the tree.
func CountUnknown(n Node) int {
	count := 0
	Walk(n, func(n Node) bool {
		if _, ok := n.(*Error); ok {
			count++
		}
		return true
	})
	return count
}
