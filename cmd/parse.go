package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zalepa/ecourts/court"
	"github.com/zalepa/ecourts/parser"
)

type parseReport struct {
	Case    string         `json:"case"`
	Files   int            `json:"files"`
	Matches []parser.Match `json:"matches"`
}

func newParseCommand(r *Runner) *cobra.Command {
	var caseID, jsonOut string
	c := &cobra.Command{
		Use:   "parse <input.pdf | directory> --case TYPE/NUMBER/YEAR [--json output.json]",
		Short: "Searches downloaded cause-list PDFs for a case.",
		Long: `Searches downloaded cause-list PDFs for a case.

If a directory is given, all *.pdf files in it are searched. Every line that
mentions the case is printed; --json also writes the matches to a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return r.parse(args[0], caseID, jsonOut)
		},
	}
	c.Flags().StringVar(&caseID, "case", "", "case as TYPE/NUMBER/YEAR")
	c.Flags().StringVar(&jsonOut, "json", "", "write matches to this JSON file")
	c.MarkFlagRequired("case")
	return c
}

func (r *Runner) parse(inputPath, caseID, jsonOut string) error {
	if strings.Count(caseID, "/") != 2 {
		return fmt.Errorf("--case %q: want TYPE/NUMBER/YEAR", caseID)
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}

	pdfs := []string{inputPath}
	if info.IsDir() {
		pdfs, err = filepath.Glob(filepath.Join(inputPath, "*.pdf"))
		if err != nil {
			return fmt.Errorf("globbing directory: %w", err)
		}
		if len(pdfs) == 0 {
			return fmt.Errorf("no PDF files found in %s", inputPath)
		}
	}

	report := parseReport{Case: caseID, Matches: []parser.Match{}}
	for _, pdf := range pdfs {
		matches, err := parser.SearchFile(pdf, caseID)
		if err != nil {
			fmt.Fprintf(r.Stderr, "%s: error reading PDF: %v\n", filepath.Base(pdf), err)
			continue
		}
		report.Files++
		fmt.Fprintf(r.Stderr, "%s: %d matching lines\n", filepath.Base(pdf), len(matches))
		for _, m := range matches {
			fmt.Fprintf(r.Stdout, "%s\tpage %d\tline %d\t%s\n", filepath.Base(pdf), m.Page, m.Line, m.Text)
		}
		report.Matches = append(report.Matches, matches...)
	}

	if jsonOut != "" {
		if err := court.WriteJSON(jsonOut, report); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
		fmt.Fprintf(r.Stderr, "%d matches in %d files → %s\n", len(report.Matches), report.Files, jsonOut)
	}
	return nil
}
