// Command bufbtreeadmin is the ambient entry point around the storage
// engine core: it opens (or creates) a base relation and its B+-tree
// index, optionally loading demo data into a fresh relation, then
// serves read-only diagnostics until interrupted.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mnohosten/bufbtree/pkg/admin"
)

func main() {
	host := flag.String("host", "localhost", "admin HTTP host address")
	port := flag.Int("port", 8080, "admin HTTP port")
	dataDir := flag.String("data-dir", "./data", "directory holding the relation and index files")
	bufferFrames := flag.Int("buffer-frames", 256, "buffer manager pool size, in frames")
	relationName := flag.String("relation", "demo", "base relation file name, under data-dir")
	attrOffset := flag.Int("attr-offset", 0, "byte offset of the indexed int32 attribute")
	loadDemo := flag.Bool("load-demo", true, "populate a fresh relation with demo tuples")
	demoCount := flag.Int("demo-count", 1000, "number of demo tuples to insert, if load-demo and the relation is new")
	flag.Parse()

	config := admin.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.DataDir = *dataDir
	config.BufferFrames = *bufferFrames
	config.RelationName = *relationName
	config.AttrByteOffset = int32(*attrOffset)
	config.LoadDemoData = *loadDemo
	config.DemoRecordCount = *demoCount

	srv, err := admin.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bufbtreeadmin: failed to start: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "bufbtreeadmin: %v\n", err)
		os.Exit(1)
	}
}
