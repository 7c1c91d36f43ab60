// Package monitor validates API request bodies against JSON schema contracts.
package monitor

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var contractFiles embed.FS

// Contract names of the bundled schemas.
const (
	ContractCreateOrder  = "create_order"
	ContractStartPayment = "start_payment"
	ContractProceed      = "proceed"
	ContractRefund       = "refund"
)

// ContractMonitor validates incoming requests against a JSON schema.
type ContractMonitor struct {
	name   string
	schema *gojsonschema.Schema
}

// NewContractMonitor creates a new ContractMonitor with the given schema file path.
// The schemaPath should be an absolute path or relative to the execution directory.
func NewContractMonitor(schemaPath string) (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + schemaPath))
	if err != nil {
		return nil, fmt.Errorf("error loading or compiling schema %s: %w", schemaPath, err)
	}
	return &ContractMonitor{name: schemaPath, schema: schema}, nil
}

// NewContractMonitorFromBytes compiles a schema held in memory.
func NewContractMonitorFromBytes(name string, raw []byte) (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("error loading or compiling schema %s: %w", name, err)
	}
	return &ContractMonitor{name: name, schema: schema}, nil
}

// LoadContracts compiles every bundled schema, keyed by contract name.
func LoadContracts() (map[string]*ContractMonitor, error) {
	entries, err := contractFiles.ReadDir("schemas")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*ContractMonitor, len(entries))
	for _, e := range entries {
		raw, err := contractFiles.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		cm, err := NewContractMonitorFromBytes(name, raw)
		if err != nil {
			return nil, err
		}
		out[name] = cm
	}
	return out, nil
}

// LoadContractsFromDir compiles the bundled schemas and then replaces them
// with the *.json files found in dir, matched by file name. Files with other
// names add new contracts. An empty dir loads only the bundled schemas.
func LoadContractsFromDir(dir string) (map[string]*ContractMonitor, error) {
	contracts, err := LoadContracts()
	if err != nil || dir == "" {
		return contracts, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("error reading schema directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		cm, err := NewContractMonitor(filepath.Join(abs, e.Name()))
		if err != nil {
			return nil, err
		}
		contracts[strings.TrimSuffix(e.Name(), ".json")] = cm
	}
	return contracts, nil
}

// Name returns the schema file path or contract name.
func (cm *ContractMonitor) Name() string { return cm.name }

// Validate validates the given request body against the loaded JSON schema.
// It returns true if valid, or false and a list of validation errors if invalid.
func (cm *ContractMonitor) Validate(requestBody []byte) (bool, []string, error) {
	result, err := cm.schema.Validate(gojsonschema.NewBytesLoader(requestBody))
	if err != nil {
		return false, nil, fmt.Errorf("error during validation: %w", err)
	}

	if result.Valid() {
		return true, nil, nil
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return false, errors, nil
}

// FormatErrors formats a slice of validation error strings into a single string.
func FormatErrors(validationErrors []string) string {
	if len(validationErrors) == 0 {
		return ""
	}
	return "Validation errors: " + strings.Join(validationErrors, "; ")
}
