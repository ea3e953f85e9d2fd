package cst

import (
	"fmt"
	"log/slog"
)

// Slog wraps a Node as a slog.LogValuer so that it is only
// described when the record is actually logged
func Slog(n Node) slog.LogValuer {
	return nodeLogValuer{n}
}

type nodeLogValuer struct{ Node }

func (l nodeLogValuer) LogValue() slog.Value {
	return slog.StringValue(Describe(l.Node))
}

// Describe renders n as its kind followed by the name it declares or uses, if any.
func Describe(n Node) string {
	switch n := n.(type) {
	case nil:
		return "<nil>"
	case *SourceFile:
		return fmt.Sprintf("%v %s", n.Kind(), n.Name)
	case *ModuleDeclaration:
		return fmt.Sprintf("%v %s", n.Kind(), n.Name)
	case *LetDeclaration:
		if name := n.Name(); name != "" {
			return fmt.Sprintf("%v %s", n.Kind(), name)
		}
	case *ReferenceExpression:
		return fmt.Sprintf("%v %s", n.Kind(), n)
	case *BindPattern:
		return fmt.Sprintf("%v %s", n.Kind(), n.Name)
	case *ConstantExpression:
		return fmt.Sprintf("%v %s", n.Kind(), n.Value)
	case *BinaryExpression:
		return fmt.Sprintf("%v %s", n.Kind(), n.Operator)
	}
	return n.Kind().String()
}
