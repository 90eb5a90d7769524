// Package cli turns command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/stockflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("stockflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
stockflow - a declarative stock-flow simulation engine.

Usage:
  stockflow [options] [MODEL_PATH]

Arguments:
  MODEL_PATH
    Path to a .json model config, a single .hcl model file, or a
    directory containing .hcl model files.

Options:
`)
		flagSet.PrintDefaults()
	}

	modelFlag := flagSet.String("model", "", "Path to the model config file or directory.")
	mFlag := flagSet.String("m", "", "Path to the model config file or directory (shorthand).")
	variationsFlag := flagSet.String("variations", "", "Path to a YAML/JSON parameter-variations document.")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent scenario workers. 0 uses available parallelism.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	diagramFlag := flagSet.Bool("diagram", false, "Print a Mermaid diagram of the base model before running.")
	tableRowsFlag := flagSet.Int("table-rows", 5, "Rows shown from each end of a scenario's time series.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *modelFlag != "" {
		path = *modelFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	// app.NewConfig owns validation of the logging options.
	config, err := app.NewConfig(app.Config{
		ModelPath:      path,
		VariationsPath: *variationsFlag,
		LogFormat:      strings.ToLower(*logFormatFlag),
		LogLevel:       strings.ToLower(*logLevelFlag),
		WorkerCount:    *workersFlag,
		ShowDiagram:    *diagramFlag,
		TableRows:      *tableRowsFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
