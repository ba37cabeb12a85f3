package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/cel-go/cel"
)

// Expression rules evaluate a boolean expression with the attribute value
// bound to the variable "value":
//
//	cel:  "value.startsWith('A') && size(value) <= 10"
//	expr: "value >= 18 && value < 130"
//
// A false result, an evaluation error or a non-boolean result is a violation.

func checkCEL(s *Standard, value any, param any) (string, bool) {
	src, ok := param.(string)
	if !ok || src == "" {
		return "", false
	}

	prg, err := s.celProgram(src)
	if err != nil {
		return fmt.Sprintf("has an invalid cel rule: %v", err), true
	}

	out, _, err := prg.Eval(map[string]any{"value": value})
	if err != nil {
		return fmt.Sprintf("fails to satisfy the expression: %s", src), true
	}
	if b, ok := out.Value().(bool); ok && b {
		return "", false
	}
	return fmt.Sprintf("fails to satisfy the expression: %s", src), true
}

func (s *Standard) celProgram(src string) (cel.Program, error) {
	key := "cel:" + src
	if cached, ok := s.programs.Load(key); ok {
		return cached.(cel.Program), nil
	}

	env, err := cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}

	ast, iss := env.Compile(src)
	if iss.Err() != nil {
		return nil, iss.Err()
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	s.programs.Store(key, prg)
	return prg, nil
}

// exprEnv binds the checked value for expr programs.
type exprEnv struct {
	Value any `expr:"value"`
}

func checkExpr(s *Standard, value any, param any) (string, bool) {
	src, ok := param.(string)
	if !ok || src == "" {
		return "", false
	}

	program, err := s.exprProgram(src)
	if err != nil {
		return fmt.Sprintf("has an invalid expr rule: %v", err), true
	}

	out, err := expr.Run(program, exprEnv{Value: value})
	if err != nil {
		return fmt.Sprintf("fails to satisfy the expression: %s", src), true
	}
	if b, ok := out.(bool); ok && b {
		return "", false
	}
	return fmt.Sprintf("fails to satisfy the expression: %s", src), true
}

func (s *Standard) exprProgram(src string) (*vm.Program, error) {
	key := "expr:" + src
	if cached, ok := s.programs.Load(key); ok {
		return cached.(*vm.Program), nil
	}

	program, err := expr.Compile(src, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}

	s.programs.Store(key, program)
	return program, nil
}
