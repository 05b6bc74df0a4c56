package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/investment-fit/internal/types"
)

// readInput reads path, or stdin when path is empty or "-"
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readRecord loads a company record from a JSON file
func readRecord(path string, stdin io.Reader) (types.Record, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record JSON: %w", err)
	}
	if rec == nil {
		rec = types.NewRecord()
	}
	return rec, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
