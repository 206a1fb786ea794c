// Config checker for derived-index statistics products.
//
// Loads every product config under the etc dir, instantiates each
// product's statistic and prints the measurements it declares. This is
// the same pre-flight the orchestrating framework performs before
// allocating output storage, so a config that passes here is safe to
// register. With -watch the checker stays resident and revalidates the
// configs whenever it receives SIGHUP.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	proc "github.com/nci/dcstats/processor"
	"github.com/nci/dcstats/utils"
)

func checkProducts(configMap map[string]*utils.Config, verbose bool) int {
	nErrors := 0
	for ns, config := range configMap {
		for i := range config.Products {
			product := &config.Products[i]
			stat, err := proc.NewStatisticFromProduct(product)
			if err != nil {
				log.Printf("namespace '%s': %v", ns, err)
				nErrors++
				continue
			}

			measurements := stat.Measurements(nil)
			if verbose {
				for _, m := range measurements {
					fmt.Printf("%s/%s: %s dtype=%s nodata=%v units=%s\n", ns, product.Name, m.Name, m.DType, m.NoData, m.Units)
				}
			} else {
				fmt.Printf("%s/%s: %d measurements ok\n", ns, product.Name, len(measurements))
			}
		}
	}
	return nErrors
}

func main() {
	etcDir := flag.String("etc", utils.EtcDir, "config root directory")
	verbose := flag.Bool("v", false, "verbose")
	watch := flag.Bool("watch", false, "stay resident and revalidate configs on SIGHUP")
	flag.Parse()

	utils.EtcDir = *etcDir
	configMap, err := utils.LoadAllConfigFiles(utils.EtcDir)
	if err != nil {
		log.Fatalf("Error in loading config files: %v", err)
	}

	if nErrors := checkProducts(configMap, *verbose); nErrors > 0 {
		os.Exit(1)
	}

	if !*watch {
		return
	}

	infoLog := log.New(os.Stdout, "", log.LstdFlags)
	errLog := log.New(os.Stderr, "", log.LstdFlags)
	utils.WatchConfig(infoLog, errLog, &configMap)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
}
