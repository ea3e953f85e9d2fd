package types

import (
	"fmt"
	"log/slog"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/internal/log"
	"github.com/pkg/errors"
)

// Fresher mints type variables with unique IDs, and names made of the
// requested prefix and a per-prefix counter: a1, a2, b1...
type Fresher struct {
	freshCount   TypeVarID
	prefixCounts map[string]int
}

func NewFresher() *Fresher {
	return &Fresher{prefixCounts: make(map[string]int)}
}

func (f *Fresher) newTypeVar(prefix string, node cst.Node) *TypeVar {
	if prefix == "" {
		prefix = "t"
	}
	f.freshCount++
	f.prefixCounts[prefix]++
	return &TypeVar{
		typeBase: typeBase{node: node},
		ID:       f.freshCount,
		Name:     fmt.Sprintf("%s%d", prefix, f.prefixCounts[prefix]),
		prefix:   prefix,
	}
}

// Frame is where inference of a function body (or of the whole file) puts what it
// produces: the constraints it generates, and the variables it mints.
type Frame struct {
	Constraints *ConstraintSet
	// TypeVars collects every variable minted while the frame is on top.
	// It is nil for frames whose variables are not generalized.
	TypeVars *TVSet
	// ReturnType is what `return` statements are constrained to, or nil
	// outside of functions
	ReturnType Type
}

// TypingContext is the mutable state of checking a single unit. It is not safe
// for concurrent use; independent units each get their own.
type TypingContext struct {
	*Fresher
	// Constraints is the global list handed to the solver.
	Constraints *ConstraintSet

	frames []*Frame
	logger *slog.Logger
}

func NewTypingContext() *TypingContext {
	global := &ConstraintSet{}
	return &TypingContext{
		Fresher:     NewFresher(),
		Constraints: global,
		frames:      []*Frame{{Constraints: global}},
		logger:      log.DefaultLogger.With("section", "infer"),
	}
}

// NewTypeVar mints a fresh variable and records it in the current frame.
func (ctx *TypingContext) NewTypeVar(prefix string, node cst.Node) *TypeVar {
	v := ctx.newTypeVar(prefix, node)
	if frame := ctx.Frame(); frame.TypeVars != nil {
		frame.TypeVars.Add(v)
	}
	return v
}

// Freshen mints a variable like v (same prefix, node and flags) for
// instantiating a scheme that quantifies v.
func (ctx *TypingContext) Freshen(v *TypeVar) *TypeVar {
	fresh := ctx.NewTypeVar(v.prefix, v.node)
	fresh.flags = v.flags
	return fresh
}

func (ctx *TypingContext) Frame() *Frame {
	return ctx.frames[len(ctx.frames)-1]
}

func (ctx *TypingContext) PushFrame(frame *Frame) {
	if frame.Constraints == nil {
		panic(errors.New("frame without a constraint set"))
	}
	ctx.frames = append(ctx.frames, frame)
}

func (ctx *TypingContext) PopFrame() *Frame {
	if len(ctx.frames) == 1 {
		panic(errors.New("cannot pop the global frame"))
	}
	top := ctx.Frame()
	ctx.frames = ctx.frames[:len(ctx.frames)-1]
	return top
}

// AddConstraint adds c to the constraints of the current frame.
func (ctx *TypingContext) AddConstraint(c Constraint) {
	ctx.logger.Debug("adding constraint", "constraint", c, "depth", len(ctx.frames))
	ctx.Frame().Constraints.Add(c)
}

// Equal is shorthand for adding an EqualityConstraint.
func (ctx *TypingContext) Equal(left, right Type) {
	ctx.AddConstraint(NewEquality(left, right))
}
