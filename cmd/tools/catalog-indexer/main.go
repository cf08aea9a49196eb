// cmd/tools/catalog-indexer/main.go
//
// Maintains the internal product index behind the catalog search
// provider:
//
//	catalog-indexer validate -file catalog.json
//	catalog-indexer index -file catalog.json [-index catalog-products]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/database"
	"shopper-agents/pkg/catalog"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateFile := validateCmd.String("file", "catalog.json", "Path to the catalog file")

	indexCmd := flag.NewFlagSet("index", flag.ExitOnError)
	indexFile := indexCmd.String("file", "catalog.json", "Path to the catalog file")
	indexName := indexCmd.String("index", "", "Target index (defaults to database.elasticsearch.index)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		file := mustLoad(*validateFile)
		if errs := file.Validate(); len(errs) > 0 {
			for _, err := range errs {
				fmt.Printf("  - %v\n", err)
			}
			fmt.Printf("Catalog invalid: %d problem(s)\n", len(errs))
			os.Exit(1)
		}
		fmt.Printf("Catalog valid: %d products (version %s)\n", len(file.Products), file.Version)

	case "index":
		indexCmd.Parse(os.Args[2:])
		file := mustLoad(*indexFile)
		if errs := file.Validate(); len(errs) > 0 {
			fmt.Printf("Error: catalog invalid (%d problems), run validate for details\n", len(errs))
			os.Exit(1)
		}
		if err := indexCatalog(file, *indexName); err != nil {
			fmt.Printf("Error indexing catalog: %v\n", err)
			os.Exit(1)
		}

	default:
		help()
		os.Exit(1)
	}
}

func mustLoad(path string) *catalog.File {
	file, err := catalog.Load(path)
	if err != nil {
		fmt.Printf("Error loading catalog: %v\n", err)
		os.Exit(1)
	}
	return file
}

func indexCatalog(file *catalog.File, indexName string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if indexName == "" {
		indexName = cfg.Database.Elasticsearch.Index
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return fmt.Errorf("elasticsearch client: %w", err)
	}
	if err := es.Ping(); err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}

	var buf bytes.Buffer
	for _, product := range file.Products {
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, indexName, product.ID)
		doc, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", product.ID, err)
		}
		buf.WriteString(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req := esapi.BulkRequest{
		Index:   indexName,
		Body:    strings.NewReader(buf.String()),
		Refresh: "true",
	}
	res, err := req.Do(ctx, es.GetClient())
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk indexing failed: %s", res.Status())
	}

	var response struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int    `json:"status"`
			Error  *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}

	failed := 0
	if response.Errors {
		for _, item := range response.Items {
			for _, result := range item {
				if result.Status >= 300 {
					failed++
					if result.Error != nil {
						fmt.Printf("  - %s\n", result.Error.Reason)
					}
				}
			}
		}
	}

	fmt.Printf("Indexed %d/%d products into %s\n", len(file.Products)-failed, len(file.Products), indexName)
	if failed > 0 {
		return fmt.Errorf("%d products failed to index", failed)
	}
	return nil
}

func help() {
	fmt.Println("Usage: catalog-indexer <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  validate  Check a catalog file without touching the index")
	fmt.Println("  index     Validate and bulk-index a catalog file")
}
