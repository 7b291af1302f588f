// Command stitch-batch converts many embroidery pattern files to a
// target extension in parallel, fanning the input list out across
// worker goroutines with traverse.Each.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpjet64/stitchgo"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

var toExt = flag.String("to", "", "target extension to convert every input file to (required)")

func main() {
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	if *toExt == "" {
		fmt.Fprintln(os.Stderr, "stitch-batch: -to is required")
		os.Exit(2)
	}
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "stitch-batch: no input files given")
		os.Exit(2)
	}

	log.Debug.Printf("stitch-batch: converting %d files to .%s", len(inputs), *toExt)
	errs := make([]error, len(inputs))
	_ = traverse.Each(len(inputs), func(i int) error {
		err := convertOne(inputs[i], *toExt)
		if err != nil {
			log.Error.Printf("stitch-batch: %s: %v", inputs[i], err)
		}
		errs[i] = err
		return err
	})

	status := 0
	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inputs[i], err)
			status = 1
		}
	}
	os.Exit(status)
}

func convertOne(path, toExt string) error {
	p, err := stitchgo.Read(path)
	if err != nil {
		return err
	}
	dest := strings.TrimSuffix(path, filepath.Ext(path)) + "." + toExt
	return stitchgo.Write(p, dest)
}
