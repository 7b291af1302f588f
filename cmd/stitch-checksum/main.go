// Command stitch-checksum prints the content checksum of one or more
// embroidery pattern files, for detecting bit-for-bit drift across a
// pipeline the way a build script checks a manifest.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cpjet64/stitchgo"
	"github.com/grailbio/base/grail"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	status := 0
	for _, path := range flag.Args() {
		p, err := stitchgo.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			status = 1
			continue
		}
		fmt.Printf("%016x  %s\n", p.Checksum(), path)
	}
	os.Exit(status)
}
