// Command schema-generator writes the JSON schema of reqs.yml.
package main

import (
	"os"
	"path/filepath"

	"github.com/grovetools/reqs/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	output := pflag.StringP("output", "o", "schema/definitions/reqs.schema.json", "File to write the schema to")
	pflag.Parse()

	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		logrus.Fatalf("Error generating schema: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		logrus.Fatalf("Error creating schema directory: %v", err)
	}
	if err := os.WriteFile(*output, append(schemaBytes, '\n'), 0644); err != nil {
		logrus.Fatalf("Error writing schema file: %v", err)
	}

	logrus.Infof("Generated reqs.yml schema at %s", *output)
}
