// Package lang implements the bcalc language: a small arithmetic language
// with variables, user-defined functions, and conditionals.
//
// # Grammar
//
// Informal EBNF, lowest to highest binding power:
//
//	Top      → Define | Let | If | Return | Math
//	Define   → 'define' Name '(' [Name (',' Name)*] ')' Block
//	Let      → 'let' Name '=' Math
//	Return   → 'return' Math
//	If       → 'if' Guard Block ('else' 'if' Guard Block)* 'else' Block
//	Guard    → '(' Math '==' Math ')'
//	Block    → '{' (Top ';')* '}'
//	Math     → Term (('+' | '-') Term)*
//	Term     → Factor (('*' | '/') Factor)*
//	Factor   → Operand ('^' Factor)?
//	Operand  → Call | Name | Number | '(' Math ')'
//	Call     → Name '(' [Math (',' Math)*] ')'
//	Name     → [A-Za-z]+
//	Number   → [0-9]+ ('.' [0-9]+)? ([eE] [+-]? [0-9]+)?
//
// '+', '-', '*', and '/' group to the left; '^' groups to the right, so
// 2^3^2 is 512. Top-level constructs are separated by ';', whitespace, or a
// comment, so "2x" is an error rather than "2" followed by "x". Inside a
// block the ';' may be omitted after a construct ending in '}'. Whitespace
// is otherwise insignificant, and '#' or '//' line comments and '/* */'
// block comments may appear between tokens.
//
// # Example
//
//	define fib(n) {
//	  if (n == 1) { return 1; }
//	  else if (n == 2) { return 1; }
//	  else { return fib(n - 1) + fib(n - 2); }
//	}
//	let x = fib(10) / 5
//	sqrt(x)
//
// # Evaluation
//
// Every construct evaluates to a float64. let and define bind in the
// environment they are evaluated in and yield the bound value or zero,
// respectively. A call evaluates its arguments in the caller's environment,
// then evaluates the function body in a fork of it with the parameters bound;
// the first executed return (or else the last expression) supplies the
// result. Conditional bodies also run in a fork. Forks are full copies, so
// nothing bound inside a call or branch is visible after it completes.
//
// Natives such as sqrt take exactly one argument. Division by zero yields
// ±Inf or NaN.
//
// # Errors
//
// All errors are [*Error] values derived from one of the package sentinels
// ([ErrParse], [ErrIncomplete], [ErrUndefinedVariable], ...) and match it with
// errors.Is. [ErrIncomplete] is distinct from [ErrParse]: it means the input
// ended in the middle of a construct, and a caller with more input (a
// continuation prompt, a file being read in chunks) should append and retry.
//
// # Sessions
//
// A [Session] owns one [Environment] and evaluates successive inputs against
// it, through [Session.Exec] for single lines or [Session.Feed] for readers.
// Each session is independent; there is no global state.
package lang

//go:generate go tool stringer --linecomment --type Kind,BindingKind --output kind_string.go
