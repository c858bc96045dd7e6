// Command schema-generator writes the JSON schemas for extender.yml and its
// logging section. Run it from the repository root:
//
//	go run ./tools/schema-generator
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/logging"
)

func main() {
	outputDir := flag.String("o", "schema", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	generators := []struct {
		file     string
		generate func() ([]byte, error)
	}{
		{"extender.schema.json", config.GenerateSchema},
		{"logging.schema.json", logging.GenerateSchema},
	}

	for _, g := range generators {
		data, err := g.generate()
		if err != nil {
			log.Fatalf("Error generating %s: %v", g.file, err)
		}
		outputPath := filepath.Join(*outputDir, g.file)
		if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
			log.Fatalf("Error writing schema file: %v", err)
		}
		log.Printf("Generated %s", outputPath)
	}
}
