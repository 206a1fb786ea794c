package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/edisonguo/govaluate"
)

// BandExpressions holds a set of parsed band math expressions. Each
// expression computes one derived quantity from named input bands.
// VarList is the union of band names referenced across all expressions,
// ExprVarRef the band names referenced per expression.
type BandExpressions struct {
	ExprText    []string
	ExprNames   []string
	Expressions []*govaluate.EvaluableExpression
	VarList     []string
	ExprVarRef  [][]string
}

var exprFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sqrt takes one argument")
		}
		val, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("sqrt argument must be numeric")
		}
		return math.Sqrt(val), nil
	},
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs takes one argument")
		}
		val, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs argument must be numeric")
		}
		return math.Abs(val), nil
	},
}

// ParseBandExpressions parses expressions of the form "name=formula" or a
// bare band name. All parsing errors are reported here rather than at
// evaluation time.
func ParseBandExpressions(bands []string) (*BandExpressions, error) {
	bandExpr := &BandExpressions{}
	varFound := make(map[string]bool)
	for _, bandRaw := range bands {
		band := strings.TrimSpace(bandRaw)
		if len(band) == 0 {
			continue
		}

		name := band
		exprText := band
		if idx := strings.Index(band, "="); idx >= 0 {
			name = strings.TrimSpace(band[:idx])
			exprText = strings.TrimSpace(band[idx+1:])
			if len(name) == 0 || len(exprText) == 0 {
				return nil, fmt.Errorf("invalid band expression: %v", bandRaw)
			}
		}

		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprText, exprFunctions)
		if err != nil {
			return nil, fmt.Errorf("parsing error in band expression '%v': %v", bandRaw, err)
		}

		bandExpr.ExprText = append(bandExpr.ExprText, exprText)
		bandExpr.ExprNames = append(bandExpr.ExprNames, name)
		bandExpr.Expressions = append(bandExpr.Expressions, expr)

		var varRef []string
		varSeen := make(map[string]bool)
		for _, variable := range expr.Vars() {
			if !varSeen[variable] {
				varSeen[variable] = true
				varRef = append(varRef, variable)
			}
			if !varFound[variable] {
				varFound[variable] = true
				bandExpr.VarList = append(bandExpr.VarList, variable)
			}
		}
		bandExpr.ExprVarRef = append(bandExpr.ExprVarRef, varRef)
	}

	if len(bandExpr.Expressions) == 0 {
		return nil, fmt.Errorf("no band expressions found")
	}
	return bandExpr, nil
}

// EvalFloat64 evaluates the ix-th expression with the supplied band values
// and coerces the result to float64.
func (b *BandExpressions) EvalFloat64(ix int, parameters map[string]interface{}) (float64, error) {
	result, err := b.Expressions[ix].Evaluate(parameters)
	if err != nil {
		return 0, fmt.Errorf("Eval '%v' error: %v", b.ExprText[ix], err)
	}

	switch val := result.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("Failed to cast eval results '%v' to float, %v", result, b.ExprText[ix])
	}
}
