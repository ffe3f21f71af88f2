package lang

import (
	"context"
	"log/slog"
	"math"

	"github.com/ardnew/bcalc/log"
)

// Evaluate evaluates e against env and returns its numeric value.
//
// Bindings made by let and define at the top level of e are made in env
// itself and persist after Evaluate returns. Function calls and conditional
// bodies evaluate in a fork of env, so their local bindings do not.
//
// Arithmetic follows IEEE-754: division by zero yields ±Inf or NaN rather
// than an error.
func Evaluate(
	ctx context.Context,
	env *Environment,
	e Expr,
	opts ...Option,
) (float64, error) {
	c := makeConfig(opts...)

	ev := evaluator{
		ctx:      ctx,
		logger:   c.logger,
		maxDepth: c.maxDepth,
	}

	v, _, err := ev.eval(env, e)
	if err != nil {
		ev.logger.TraceContext(ctx, "eval failed",
			slog.String("kind", e.Kind().String()),
			slog.Any("error", err),
		)

		return 0, err
	}

	ev.logger.TraceContext(ctx, "eval complete",
		slog.String("kind", e.Kind().String()),
		slog.Float64("result", v),
	)

	return v, nil
}

type evaluator struct {
	ctx      context.Context
	logger   log.Logger
	maxDepth int
	depth    int
}

// eval evaluates e in env. The returned flag reports whether a return
// expression was executed, which completes the enclosing body.
func (ev *evaluator) eval(env *Environment, e Expr) (float64, bool, error) {
	switch n := e.(type) {
	case *Number:
		return n.Value, false, nil

	case *Var:
		v, err := ev.lookup(env, n.Name)

		return v, false, err

	case *Binary:
		l, _, err := ev.eval(env, n.Left)
		if err != nil {
			return 0, false, err
		}

		r, _, err := ev.eval(env, n.Right)
		if err != nil {
			return 0, false, err
		}

		return apply(n.Op, l, r), false, nil

	case *Let:
		v, _, err := ev.eval(env, n.Value)
		if err != nil {
			return 0, false, err
		}

		env.Bind(n.Name, Value(v))

		return v, false, nil

	case *Define:
		env.Bind(n.Name, Function{Params: n.Params, Body: n.Body})

		return 0, false, nil

	case *Return:
		v, _, err := ev.eval(env, n.Value)
		if err != nil {
			return 0, false, err
		}

		return v, true, nil

	case *Call:
		v, err := ev.call(env, n)

		return v, false, err

	case *If:
		return ev.cond(env, n)

	default:
		return 0, false, ErrParse.Withf("unknown expression %T", e)
	}
}

func (ev *evaluator) lookup(env *Environment, name string) (float64, error) {
	b, ok := env.Get(name)
	if !ok {
		return 0, ErrUndefinedVariable.Withf("%s", name).
			With(slog.String("name", name))
	}

	switch b := b.(type) {
	case Value:
		return float64(b), nil

	default:
		return 0, ErrInvalidVariableReference.
			Withf("%s is a %s, not a number", name, b.BindingKind()).
			With(slog.String("name", name), slog.String("kind", b.BindingKind().String()))
	}
}

// body evaluates a sequence of expressions in env, stopping at the first
// executed return. The result is that return's value, or the value of the last
// expression, or zero for an empty body.
func (ev *evaluator) body(env *Environment, list []Expr) (float64, bool, error) {
	var v float64

	for _, e := range list {
		var (
			returned bool
			err      error
		)

		v, returned, err = ev.eval(env, e)
		if err != nil {
			return 0, false, err
		}

		if returned {
			return v, true, nil
		}
	}

	return v, false, nil
}

// cond evaluates every guard in order before selecting a branch, so a
// failing guard aborts the conditional even when an earlier guard matched.
func (ev *evaluator) cond(env *Environment, n *If) (float64, bool, error) {
	match := -1

	for i, br := range n.Branches {
		l, _, err := ev.eval(env, br.Left)
		if err != nil {
			return 0, false, err
		}

		r, _, err := ev.eval(env, br.Right)
		if err != nil {
			return 0, false, err
		}

		if l == r && match < 0 {
			match = i
		}
	}

	if match >= 0 {
		ev.logger.TraceContext(ev.ctx, "eval branch", slog.Int("branch", match))

		return ev.body(env.Fork(), n.Branches[match].Body)
	}

	ev.logger.TraceContext(ev.ctx, "eval branch", slog.String("branch", "else"))

	return ev.body(env.Fork(), n.Else)
}

func (ev *evaluator) call(env *Environment, n *Call) (float64, error) {
	b, ok := env.Get(n.Name)
	if !ok {
		return 0, ErrUndefinedFunction.Withf("%s", n.Name).
			With(slog.String("name", n.Name))
	}

	switch fn := b.(type) {
	case Native:
		if len(n.Args) != 1 {
			return 0, ErrInvalidNativeArguments.
				Withf("%s takes exactly 1 argument, got %d", n.Name, len(n.Args)).
				With(slog.String("name", n.Name), slog.Int("actual", len(n.Args)))
		}

		x, _, err := ev.eval(env, n.Args[0])
		if err != nil {
			return 0, err
		}

		return fn.Fn(x), nil

	case Function:
		if len(n.Args) != len(fn.Params) {
			return 0, ErrInvalidArguments.
				Withf("%s expects %d argument(s), got %d", n.Name, len(fn.Params), len(n.Args)).
				With(
					slog.String("name", n.Name),
					slog.Int("expected", len(fn.Params)),
					slog.Int("actual", len(n.Args)),
				)
		}

		args := make([]float64, len(n.Args))
		for i, arg := range n.Args {
			v, _, err := ev.eval(env, arg)
			if err != nil {
				return 0, err
			}

			args[i] = v
		}

		ev.depth++
		defer func() { ev.depth-- }()

		if ev.maxDepth > 0 && ev.depth > ev.maxDepth {
			return 0, ErrMaxDepthExceeded.
				Withf("call depth exceeds %d in %s", ev.maxDepth, n.Name).
				With(slog.String("name", n.Name), slog.Int("limit", ev.maxDepth))
		}

		ev.logger.TraceContext(ev.ctx, "eval call",
			slog.String("name", n.Name),
			slog.Int("depth", ev.depth),
			slog.Any("args", args),
		)

		frame := env.Fork()
		for i, param := range fn.Params {
			frame.Bind(param, Value(args[i]))
		}

		v, _, err := ev.body(frame, fn.Body)

		return v, err

	default:
		return 0, ErrInvalidFunctionReference.
			Withf("%s is a %s, not a function", n.Name, b.BindingKind()).
			With(slog.String("name", n.Name), slog.String("kind", b.BindingKind().String()))
	}
}

func apply(op Op, l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		return l / r
	case OpPow:
		return math.Pow(l, r)
	default:
		return math.NaN()
	}
}
