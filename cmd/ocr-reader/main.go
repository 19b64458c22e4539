package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/Sigitfad/ocr-reader/cmd/ocr-reader/cmd"
)

func main() {
	// OCR_READER_* settings may live in a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}
	cmd.Execute()
}
