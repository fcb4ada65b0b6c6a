package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oarkflow/georocket"
	"github.com/oarkflow/georocket/index/memindex"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/storage/fsstore"
)

var (
	storeDirPtr = flag.String("store", "./georocket-data", "Directory the filesystem store writes chunk blobs under")
	filePtr     = flag.String("file", "", "XML or GeoJSON file to import")
	mimePtr     = flag.String("mime", "application/xml", "Mime type of -file: application/xml or application/json")
	layerPtr    = flag.String("layer", "default", "Layer to import the file's chunks into")
	queryPtr    = flag.String("query", "", "Query to run against the index after import and print the merged result for")
)

func main() {
	flag.Parse()
	if *filePtr == "" {
		fmt.Println("usage: georocket-import -file <path> [-mime application/xml|application/json] [-layer name] [-query q]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := fsstore.New(*storeDirPtr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	idx := memindex.New()
	engine := georocket.New(store, idx, georocket.DefaultConfig(), true)
	engine.Config.DefaultLayer = *layerPtr

	f, err := os.Open(*filePtr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open file:", err)
		os.Exit(1)
	}
	defer f.Close()

	res, err := engine.Import(ctx, f, *mimePtr, indexmeta.Meta{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "import:", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d chunks in %s\n", res.ChunkCount, res.Elapsed)

	if *queryPtr != "" {
		if err := engine.Query(ctx, os.Stdout, *queryPtr); err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
	}
}
