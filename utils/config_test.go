package utils

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"
)

const testConfigJSON = `{
	"service_config": {
		"memcache_uri": "",
		"template_root": "templates"
	},
	"products": [
		{
			"name": "brightness",
			"bands": ["green", "red", "nir", "swir1"],
			"output_name": "brightness",
			"stats": ["min", "max", "mean"]
		},
		{
			"name": "ndvi",
			"expression": "ndvi=(nir - red) / (nir + red)",
			"stats": ["mean"]
		}
	]
}`

const testConfigYAML = `service_config:
  template_root: templates
products:
  - name: brightness
    bands: [green, red, nir, swir1]
    output_name: brightness
`

func writeTestConfig(t *testing.T, name, content string) string {
	dir, err := ioutil.TempDir("", "dcstats_config")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := writeTestConfig(t, "config.json", testConfigJSON)

	config := &Config{}
	if err := config.LoadConfigFile(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(config.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(config.Products))
	}

	brightness := config.Products[0]
	if len(brightness.Bands) != 4 {
		t.Errorf("expected 4 bands, got %v", brightness.Bands)
	}
	if brightness.Concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, brightness.Concurrency)
	}
	if brightness.RowsPerChunk != DefaultRowsPerChunk {
		t.Errorf("expected default rows per chunk %d, got %d", DefaultRowsPerChunk, brightness.RowsPerChunk)
	}

	ndvi := config.Products[1]
	if ndvi.BandExpr == nil {
		t.Fatal("expression product has no parsed band expression")
	}
	if ndvi.OutputName != "ndvi" {
		t.Errorf("expected output name to default to product name, got %q", ndvi.OutputName)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := writeTestConfig(t, "config.yaml", testConfigYAML)

	config := &Config{}
	if err := config.LoadConfigFile(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(config.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(config.Products))
	}
	if config.ServiceConfig.TemplateRoot != "templates" {
		t.Errorf("unexpected service config: %+v", config.ServiceConfig)
	}
}

func TestLoadAllConfigFiles(t *testing.T) {
	dir := writeTestConfig(t, "config.json", testConfigJSON)

	configMap, err := LoadAllConfigFiles(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	config, ok := configMap["."]
	if !ok {
		t.Fatalf("expected root namespace config, got %v", configMap)
	}
	if config.Products[0].NameSpace != "" {
		t.Errorf("root namespace should be empty, got %q", config.Products[0].NameSpace)
	}
}

func TestReloadConfig(t *testing.T) {
	dir := writeTestConfig(t, "config.json", testConfigJSON)

	savedEtcDir := EtcDir
	EtcDir = dir
	defer func() { EtcDir = savedEtcDir }()

	configMap, err := LoadAllConfigFiles(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(configMap["."].Products) != 2 {
		t.Fatalf("expected 2 products before reload, got %d", len(configMap["."].Products))
	}

	updated := `{"products": [{"name": "ndwi", "expression": "(green - nir) / (green + nir)"}]}`
	if err := ioutil.WriteFile(filepath.Join(dir, "config.json"), []byte(updated), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	errLog := log.New(ioutil.Discard, "", 0)
	if err := ReloadConfig(errLog, &configMap); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	config, ok := configMap["."]
	if !ok {
		t.Fatalf("reload lost the root namespace: %v", configMap)
	}
	if len(config.Products) != 1 || config.Products[0].Name != "ndwi" {
		t.Errorf("reload did not swap the product list: %+v", config.Products)
	}
}

func TestReloadConfigKeepsMapOnError(t *testing.T) {
	dir := writeTestConfig(t, "config.json", testConfigJSON)

	savedEtcDir := EtcDir
	EtcDir = dir
	defer func() { EtcDir = savedEtcDir }()

	configMap, err := LoadAllConfigFiles(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	broken := `{"products": [{"name": "p", "bands": ["a"]}]}`
	if err := ioutil.WriteFile(filepath.Join(dir, "config.json"), []byte(broken), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	errLog := log.New(ioutil.Discard, "", 0)
	if err := ReloadConfig(errLog, &configMap); err == nil {
		t.Fatal("expected reload of a broken config to fail")
	}
	if len(configMap["."].Products) != 2 {
		t.Errorf("failed reload clobbered the current config: %+v", configMap["."].Products)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"wrong band count", `{"products": [{"name": "p", "bands": ["a", "b", "c"]}]}`},
		{"bands and expression", `{"products": [{"name": "p", "bands": ["a", "b", "c", "d"], "expression": "a+b"}]}`},
		{"malformed expression", `{"products": [{"name": "p", "expression": "a +* b"}]}`},
		{"missing name", `{"products": [{"bands": ["a", "b", "c", "d"]}]}`},
	}

	for _, c := range cases {
		dir := writeTestConfig(t, "config.json", c.content)
		config := &Config{}
		if err := config.LoadConfigFile(filepath.Join(dir, "config.json")); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}
