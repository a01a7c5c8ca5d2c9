/*
Package cli provides command-line helpers for the nlpolicy command: error
types with exit codes, output formatters and signal handling.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatYAML)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
