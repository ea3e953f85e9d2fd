package ilerr

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/types"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None            ErrCode = iota
	BindingNotFound ErrCode = iota
	TypeMismatch
	ParamCountMismatch
	OccursCheck
	TypeNotFound
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

type IleError interface {
	Error() string
	Code() ErrCode
	Severity() Severity
	cst.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// FormatAt prefixes FormatWithCode with the position of e in fset, when it has one.
func FormatAt(fset *token.FileSet, e IleError) string {
	if fset == nil || !e.Pos().IsValid() {
		return FormatWithCode(e)
	}
	return fmt.Sprintf("%v: %s", fset.Position(e.Pos()), FormatWithCode(e))
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

// PositionOf returns the node of the first type that has one,
// or an empty Range otherwise.
func PositionOf(ts ...types.Type) cst.Positioner {
	for _, t := range ts {
		if t != nil && t.Node() != nil {
			return t.Node()
		}
	}
	return cst.Range{}
}

type Unclassified struct {
	From error
	cst.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode      { return None }
func (e Unclassified) Severity() Severity { return SeverityError }
func (e Unclassified) getStack() []byte   { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewBindingNotFound struct {
	cst.Positioner
	Name  string
	stack []byte
}

func (e NewBindingNotFound) Code() ErrCode      { return BindingNotFound }
func (e NewBindingNotFound) Severity() Severity { return SeverityError }
func (e NewBindingNotFound) Error() string {
	return fmt.Sprintf("binding '%s' not found", e.Name)
}
func (e NewBindingNotFound) getStack() []byte { return e.stack }
func (e NewBindingNotFound) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTypeMismatch struct {
	cst.Positioner
	First  types.Type
	Second types.Type
	stack  []byte
}

func (e NewTypeMismatch) Code() ErrCode      { return TypeMismatch }
func (e NewTypeMismatch) Severity() Severity { return SeverityError }
func (e NewTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected type '%v', but found a different type '%v'", e.First, e.Second)
}
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewParamCountMismatch struct {
	cst.Positioner
	Expected *types.ArrowType
	Found    *types.ArrowType
	stack    []byte
}

func (e NewParamCountMismatch) Code() ErrCode      { return ParamCountMismatch }
func (e NewParamCountMismatch) Severity() Severity { return SeverityError }
func (e NewParamCountMismatch) Error() string {
	return fmt.Sprintf("function '%v' takes %d parameters, but '%v' has %d",
		e.Expected, len(e.Expected.Params), e.Found, len(e.Found.Params))
}
func (e NewParamCountMismatch) getStack() []byte { return e.stack }
func (e NewParamCountMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewOccursCheck struct {
	cst.Positioner
	Var   *types.TypeVar
	Type  types.Type
	stack []byte
}

func (e NewOccursCheck) Code() ErrCode      { return OccursCheck }
func (e NewOccursCheck) Severity() Severity { return SeverityError }
func (e NewOccursCheck) Error() string {
	return fmt.Sprintf("infinite type: '%v' occurs in '%v'", e.Var, e.Type)
}
func (e NewOccursCheck) getStack() []byte { return e.stack }
func (e NewOccursCheck) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTypeNotFound struct {
	cst.Positioner
	Name  string
	stack []byte
}

func (e NewTypeNotFound) Code() ErrCode      { return TypeNotFound }
func (e NewTypeNotFound) Severity() Severity { return SeverityError }
func (e NewTypeNotFound) Error() string {
	return fmt.Sprintf("type '%s' not found", e.Name)
}
func (e NewTypeNotFound) getStack() []byte { return e.stack }
func (e NewTypeNotFound) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
