package security

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// OrderRuleInput is the evaluation context for an order acceptance rule.
type OrderRuleInput struct {
	OrderTotal          float64
	TotalItems          int64
	CustomerOutstanding float64
	CreditLimit         float64
	CreditDays          int64
}

// OrderRule is a compiled CEL acceptance rule for order placement.
// Deployments configure the expression (e.g. credit policy); a nil rule
// means every order is accepted.
//
// Example expression:
//
//	credit_limit == 0.0 || customer_outstanding + order_total <= credit_limit
type OrderRule struct {
	expr string
	prg  cel.Program
}

// CompileOrderRule compiles the expression against the order rule schema.
func CompileOrderRule(expr string) (*OrderRule, error) {
	env, err := cel.NewEnv(
		cel.Variable("order_total", cel.DoubleType),
		cel.Variable("total_items", cel.IntType),
		cel.Variable("customer_outstanding", cel.DoubleType),
		cel.Variable("credit_limit", cel.DoubleType),
		cel.Variable("credit_days", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile order rule: %w", iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("order rule must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build order rule program: %w", err)
	}

	return &OrderRule{expr: expr, prg: prg}, nil
}

// Expression returns the source expression.
func (r *OrderRule) Expression() string {
	return r.expr
}

// Allow evaluates the rule. A nil rule allows everything.
func (r *OrderRule) Allow(input OrderRuleInput) (bool, error) {
	if r == nil {
		return true, nil
	}

	out, _, err := r.prg.Eval(map[string]any{
		"order_total":          input.OrderTotal,
		"total_items":          input.TotalItems,
		"customer_outstanding": input.CustomerOutstanding,
		"credit_limit":         input.CreditLimit,
		"credit_days":          input.CreditDays,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate order rule: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("order rule returned non-bool %T", out.Value())
	}
	return allowed, nil
}
