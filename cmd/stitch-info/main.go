// Command stitch-info prints a summary of each embroidery pattern file
// given: stitch, jump, color-change, thread and total command counts
// and its metadata. With -formats it lists the formats the catalog
// supports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cpjet64/stitchgo"
	"github.com/grailbio/base/grail"
)

var listFormats = flag.Bool("formats", false, "list supported formats instead of inspecting a file")

func main() {
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	if *listFormats {
		for _, d := range stitchgo.SupportedFormats() {
			rw := ""
			if d.ReadFunc != nil {
				rw += "r"
			}
			if d.WriteFunc != nil {
				rw += "w"
			}
			fmt.Printf("%-6s %-4s %s\n", d.Extension, rw, d.Description)
		}
		return
	}

	status := 0
	for _, path := range flag.Args() {
		if err := printInfo(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			status = 1
		}
	}
	os.Exit(status)
}

func printInfo(path string) error {
	p, err := stitchgo.Read(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", path)
	fmt.Printf("  stitches:      %d\n", p.CountStitchCommands(stitchgo.Stitch))
	fmt.Printf("  jumps:         %d\n", p.CountStitchCommands(stitchgo.Jump))
	fmt.Printf("  color changes: %d\n", p.CountColorChanges())
	fmt.Printf("  threads:       %d\n", p.CountThreads())
	fmt.Printf("  commands:      %d\n", p.Len())
	for k, v := range p.Metadata {
		fmt.Printf("  metadata %s=%s\n", k, v)
	}
	return nil
}
