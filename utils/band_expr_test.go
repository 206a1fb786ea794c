package utils

import (
	"math"
	"testing"
)

func TestParseBandExpressions(t *testing.T) {
	bandExpr, err := ParseBandExpressions([]string{"ndvi=(nir - red) / (nir + red)", "red"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(bandExpr.Expressions) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(bandExpr.Expressions))
	}
	if bandExpr.ExprNames[0] != "ndvi" || bandExpr.ExprNames[1] != "red" {
		t.Errorf("unexpected expression names: %v", bandExpr.ExprNames)
	}

	if len(bandExpr.VarList) != 2 {
		t.Fatalf("expected 2 variables, got %v", bandExpr.VarList)
	}
	varFound := make(map[string]bool)
	for _, v := range bandExpr.VarList {
		varFound[v] = true
	}
	if !varFound["nir"] || !varFound["red"] {
		t.Errorf("unexpected variable list: %v", bandExpr.VarList)
	}

	if len(bandExpr.ExprVarRef[0]) != 2 || len(bandExpr.ExprVarRef[1]) != 1 {
		t.Errorf("unexpected per-expression variable refs: %v", bandExpr.ExprVarRef)
	}

	val, err := bandExpr.EvalFloat64(0, map[string]interface{}{"nir": 3.0, "red": 1.0})
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if math.Abs(val-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %v", val)
	}
}

func TestParseBandExpressionsSqrt(t *testing.T) {
	bandExpr, err := ParseBandExpressions([]string{"brightness=sqrt(green**2 + red**2)"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	val, err := bandExpr.EvalFloat64(0, map[string]interface{}{"green": 3.0, "red": 4.0})
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if math.Abs(val-5) > 1e-9 {
		t.Errorf("expected 5, got %v", val)
	}
}

func TestParseBandExpressionsErrors(t *testing.T) {
	if _, err := ParseBandExpressions([]string{"bad=nir +* red"}); err == nil {
		t.Error("expected parse error for malformed expression")
	}
	if _, err := ParseBandExpressions([]string{"=nir"}); err == nil {
		t.Error("expected parse error for empty name")
	}
	if _, err := ParseBandExpressions(nil); err == nil {
		t.Error("expected error for empty expression list")
	}
}
