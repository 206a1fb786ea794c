package utils

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/yaml.v2"
)

var EtcDir = "."

const DefaultConcurrency = 4
const DefaultRowsPerChunk = 256

type ServiceConfig struct {
	MemcacheURI   string `json:"memcache_uri" yaml:"memcache_uri"`
	TemplateRoot  string `json:"template_root" yaml:"template_root"`
	MetricsLogDir string `json:"metrics_log_dir" yaml:"metrics_log_dir"`
}

// StatProduct contains all the details a derived-index statistics product
// needs to be declared and computed. A product either names the four bands
// of the brightness index or carries an arbitrary band expression.
type StatProduct struct {
	Name         string   `json:"name" yaml:"name"`
	NameSpace    string   `json:"-" yaml:"-"`
	Title        string   `json:"title" yaml:"title"`
	Abstract     string   `json:"abstract" yaml:"abstract"`
	Bands        []string `json:"bands" yaml:"bands"`
	Expression   string   `json:"expression" yaml:"expression"`
	OutputName   string   `json:"output_name" yaml:"output_name"`
	Stats        []string `json:"stats" yaml:"stats"`
	Concurrency  int      `json:"concurrency" yaml:"concurrency"`
	RowsPerChunk int      `json:"rows_per_chunk" yaml:"rows_per_chunk"`

	BandExpr *BandExpressions `json:"-" yaml:"-"`
}

// Config is the struct representing the configuration of a statistics
// deployment. It contains service level settings as well as the list of
// stat products that can be computed.
type Config struct {
	ServiceConfig ServiceConfig `json:"service_config" yaml:"service_config"`
	Products      []StatProduct `json:"products" yaml:"products"`
}

// string used to format Go ISO times
const ISOFormat = "2006-01-02T15:04:05.000Z"

// LoadConfigFile unmarshalls a config document, JSON or YAML depending on
// the file extension, and validates every product in it.
func (config *Config) LoadConfigFile(configFile string) error {
	*config = Config{}
	cfg, err := ioutil.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Error while reading config file: %s. Error: %v", configFile, err)
	}

	ext := strings.ToLower(filepath.Ext(configFile))
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(cfg, config)
	} else {
		err = json.Unmarshal(cfg, config)
	}
	if err != nil {
		return fmt.Errorf("Error at parsing config document: %s. Error: %v", configFile, err)
	}

	for i := range config.Products {
		if err := config.Products[i].init(); err != nil {
			return fmt.Errorf("%s: product '%s': %v", configFile, config.Products[i].Name, err)
		}
	}
	return nil
}

func (p *StatProduct) init() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return fmt.Errorf("product has no name")
	}
	if len(strings.TrimSpace(p.OutputName)) == 0 {
		p.OutputName = p.Name
	}

	hasExpr := len(strings.TrimSpace(p.Expression)) > 0
	if hasExpr && len(p.Bands) > 0 {
		return fmt.Errorf("bands and expression are mutually exclusive")
	}
	if !hasExpr && len(p.Bands) != 4 {
		return fmt.Errorf("expected 4 bands, found %d", len(p.Bands))
	}

	if hasExpr {
		bandExpr, err := ParseBandExpressions([]string{p.Expression})
		if err != nil {
			return err
		}
		p.BandExpr = bandExpr
	}

	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.RowsPerChunk <= 0 {
		p.RowsPerChunk = DefaultRowsPerChunk
	}
	return nil
}

// LoadAllConfigFiles walks rootDir loading every config.json or config.yaml
// under it, namespaced by its relative directory.
func LoadAllConfigFiles(rootDir string) (map[string]*Config, error) {
	configMap := make(map[string]*Config)
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}
		name := info.Name()
		if name != "config.json" && name != "config.yaml" && name != "config.yml" {
			return nil
		}

		relPath, _ := filepath.Rel(rootDir, filepath.Dir(path))
		log.Printf("Loading config file: %s under namespace: %s\n", path, relPath)

		config := &Config{}
		e := config.LoadConfigFile(path)
		if e != nil {
			return e
		}

		configMap[relPath] = config

		for i := range config.Products {
			ns := relPath
			if relPath == "." {
				ns = ""
			}
			config.Products[i].NameSpace = ns
		}
		return nil
	})

	if err == nil && len(configMap) == 0 {
		err = fmt.Errorf("No config file found")
	}

	return configMap, err
}

// ReloadConfig reloads every config file under EtcDir and swaps the entries
// of configMap in place. A load failure leaves the current map untouched.
func ReloadConfig(errLog *log.Logger, configMap *map[string]*Config) error {
	confMap, err := LoadAllConfigFiles(EtcDir)
	if err != nil {
		errLog.Printf("Error in loading config files: %v\n", err)
		return err
	}

	for k := range *configMap {
		delete(*configMap, k)
	}

	for k := range confMap {
		(*configMap)[k] = confMap[k]
	}
	return nil
}

func WatchConfig(infoLog, errLog *log.Logger, configMap *map[string]*Config) {
	// Catch SIGHUP to automatically reload config
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for {
			<-sighup
			infoLog.Println("Caught SIGHUP, reloading config...")
			ReloadConfig(errLog, configMap)
		}
	}()
}
