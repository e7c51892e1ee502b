package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/internal/kv"
)

func main() {
	assumeYes := flag.Bool("yes", false, "import without asking for confirmation")
	dryRun := flag.Bool("dry-run", false, "parse the sheet and report, without saving")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: seed [-yes] [-dry-run] <catalog.xlsx>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *assumeYes, *dryRun); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(path string, assumeYes, dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	products, skipped, err := readProductsFromXLSX(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	fmt.Printf("%s: %d products ready, %d rows skipped\n", path, len(products), skipped)

	if dryRun {
		return nil
	}
	if !assumeYes && !confirm(fmt.Sprintf("Write %d products to the %s store?", len(products), cfg.Storage.Driver)) {
		fmt.Println("Nothing imported.")
		return nil
	}

	ctx := context.Background()
	store, err := kv.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	state, err := repository.Open(ctx, store, repository.StorefrontDefaults())
	if err != nil {
		return fmt.Errorf("load storefront: %w", err)
	}
	defer state.Close()

	created, updated, err := repository.NewProductRepository(state).BulkUpsert(ctx, products)
	if err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	fmt.Printf("Catalog updated: %d new, %d replaced\n", created, updated)
	return nil
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
