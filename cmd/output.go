package cmd

import (
	"fmt"
	"io"
	"os"
)

// outputWriter resolves the destination for command output. The caller
// must invoke the returned closer when done; for stdout it is a no-op.
func outputWriter() (io.Writer, func(), error) {
	if cfg.OutputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", cfg.OutputFile, err)
	}
	return f, func() { _ = f.Close() }, nil
}
