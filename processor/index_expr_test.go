package processor

import (
	"math"
	"testing"
)

func TestIndexStatisticNDVI(t *testing.T) {
	stat, err := NewIndexStatistic("(nir - red) / (nir + red)", "ndvi", []string{"mean"})
	if err != nil {
		t.Fatalf("failed to construct index statistic: %v", err)
	}

	ds := constantDataset([]string{"nir", "red"}, 0, 1, 1, 1)
	ds.Bands["nir"].Data[0] = 3
	ds.Bands["red"].Data[0] = 1

	outputs, err := stat.Compute(ds)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	layer, ok := outputs["ndvi_mean"]
	if !ok {
		t.Fatal("missing output layer ndvi_mean")
	}
	if math.Abs(float64(layer.Data[0])-0.5) > 1e-5 {
		t.Errorf("expected NDVI 0.5, got %v", layer.Data[0])
	}
	if layer.CRS != ds.CRS {
		t.Errorf("CRS not propagated, got %q", layer.CRS)
	}
}

func TestIndexStatisticMatchesBrightness(t *testing.T) {
	expr := "sqrt(green**2 + red**2 + nir**2 + swir1**2)"
	exprStat, err := NewIndexStatistic(expr, "brightness", nil)
	if err != nil {
		t.Fatalf("failed to construct index statistic: %v", err)
	}
	b := newTestBrightness(t, nil)

	ds := constantDataset(testBands, 0, 2, 2, 3)
	vals := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	for _, tr := range ds.Bands {
		copy(tr.Data, vals)
	}

	fromExpr, err := exprStat.Compute(ds)
	if err != nil {
		t.Fatalf("expression compute failed: %v", err)
	}
	fromBrightness, err := b.Compute(ds)
	if err != nil {
		t.Fatalf("brightness compute failed: %v", err)
	}

	for name, layer := range fromBrightness {
		other, ok := fromExpr[name]
		if !ok {
			t.Fatalf("expression output missing layer %s", name)
		}
		for i := range layer.Data {
			if math.Abs(float64(layer.Data[i]-other.Data[i])) > 1e-4 {
				t.Errorf("%s: expression and fixed formula disagree at cell %d: %v vs %v", name, i, other.Data[i], layer.Data[i])
				break
			}
		}
	}
}

func TestIndexStatisticInvalidExpression(t *testing.T) {
	_, err := NewIndexStatistic("nir +* red", "bad", nil)
	if err == nil {
		t.Fatal("expected expression parse error at construction")
	}
}

func TestIndexStatisticUnknownStatRejected(t *testing.T) {
	_, err := NewIndexStatistic("nir - red", "diff", []string{"p95"})
	if err == nil {
		t.Fatal("expected unknown statistic to be rejected at construction")
	}
}

func TestIndexStatisticMissingBand(t *testing.T) {
	stat, err := NewIndexStatistic("nir - red", "diff", nil)
	if err != nil {
		t.Fatalf("failed to construct index statistic: %v", err)
	}
	ds := constantDataset([]string{"nir"}, 1, 1, 1, 1)
	if _, err := stat.Compute(ds); err == nil {
		t.Fatal("expected missing band error")
	}
}
