package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/pipeline"
)

// errIssues is returned when check finds errors, so the process exits
// non-zero without printing the issues twice.
var errIssues = errors.New("annotation errors found")

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags       analyzeFlags
		asJSON      bool
		strictWarn  bool
		stdinFormat string
	)

	cmd := &cobra.Command{
		Use:   "check [document...]",
		Short: "Report annotation problems that affect CDU elimination",
		Long: `Report annotation problems that affect CDU elimination.

check builds every document and reports build failures, multiheaded CDUs,
cyclic CDU nesting and CDUs without a head. It keeps going past bad
documents and exits non-zero if any error was found (or any warning, with
--warnings-as-errors).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docs, err := loadDocuments(args, stdinFormat)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Checking %d documents...", len(docs)))
			spinner.Start()
			issues, err := runner.Check(ctx, docs, c.options(cmd, &flags))
			spinner.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(stdout, nonNil(issues)); err != nil {
					return err
				}
			} else {
				printIssues(len(docs), issues)
			}
			if failing(issues, strictWarn) {
				cmd.SilenceErrors = true
				return errIssues
			}
			return nil
		},
	}

	addAnalyzeFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print issues as JSON")
	cmd.Flags().BoolVar(&strictWarn, "warnings-as-errors", false, "exit non-zero on warnings too")
	cmd.Flags().StringVar(&stdinFormat, "input-format", "json", "format of a document read from stdin")

	return cmd
}

func printIssues(docCount int, issues []pipeline.Issue) {
	var errs, warns int
	for _, is := range issues {
		switch is.Severity {
		case pipeline.SeverityError:
			errs++
			printError("%s", is)
		default:
			warns++
			printWarning("%s", is)
		}
	}
	if len(issues) == 0 {
		printSuccess("%d documents, no issues", docCount)
		return
	}
	printNewline()
	printKeyValue("documents", fmt.Sprint(docCount))
	printKeyValue("errors", fmt.Sprint(errs))
	printKeyValue("warnings", fmt.Sprint(warns))
}

func failing(issues []pipeline.Issue, warnings bool) bool {
	for _, is := range issues {
		if is.Severity == pipeline.SeverityError || warnings {
			return true
		}
	}
	return false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
