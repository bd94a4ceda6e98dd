// Command tablecheck validates table sheets against the game schemas. With
// no arguments it checks the bundled sheets.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kuewon/Cliunt-sub000/prefabs"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

func main() {
	strict := flag.Bool("strict", false, "fail on cell problems, not only on unusable sheets")
	flag.Parse()

	schemas := tables.GameSchemas()
	failed := 0

	if flag.NArg() == 0 {
		names, err := prefabs.TableFiles()
		if err != nil {
			log.Fatal(err)
		}
		for _, name := range names {
			data, err := prefabs.Load(name)
			if err != nil {
				log.Fatal(err)
			}
			if !report(name, data, schemas, *strict) {
				failed++
			}
		}
	}
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++
			continue
		}
		if !report(path, data, schemas, *strict) {
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("%d sheet(s) failed\n", failed)
		os.Exit(1)
	}
}

func report(path string, data []byte, schemas *tables.Registry, strict bool) bool {
	name, rows, problems, err := decode(path, data, schemas)
	if err != nil {
		fmt.Printf("FAIL %s: %v\n", path, err)
		return false
	}
	for _, p := range problems {
		fmt.Printf("     %s: %v\n", path, p)
	}
	// SetTable applies the same checks the game does
	if !tables.NewStore().SetTable(name, rows) {
		fmt.Printf("FAIL %s: %s has no usable rows\n", path, name)
		return false
	}
	if strict && len(problems) > 0 {
		fmt.Printf("FAIL %s: %d problem(s)\n", path, len(problems))
		return false
	}
	fmt.Printf("ok   %s: %s, %d rows\n", path, name, len(rows))
	return true
}

func decode(path string, data []byte, schemas *tables.Registry) (string, []tables.Row, []error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		schema, ok := schemas.Schema(name)
		if !ok {
			return name, nil, nil, fmt.Errorf("%w: schema %s", tables.ErrNotFound, name)
		}
		rows, problems, err := tables.DecodeCSV(schema, bytes.NewReader(data))
		return name, rows, problems, err
	case ".yaml", ".yml":
		return tables.DecodeYAML(data, schemas)
	}
	return "", nil, nil, fmt.Errorf("unsupported sheet %s", path)
}
