package main

import (
	"fmt"
	"os"

	"github.com/c360/eventbuilder/decoder"
)

func runDecode(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := decoder.DecodeAndSave(f, os.Stdout); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
