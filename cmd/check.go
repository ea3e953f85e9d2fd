package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"

	"github.com/cottand/tyck/internal/log"
	"github.com/cottand/tyck/tyck"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.yaml...",
	Short:        "Type check fixture files",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	logLevel  int
	jobs      int
	showTypes *bool
)

func init() {
	CheckCmd.Flags().IntVarP(&logLevel, "log-level", "l", int(slog.LevelError), "log level")
	CheckCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "files checked at the same time")
	showTypes = CheckCmd.Flags().BoolP("show-types", "t", false, "print the type of every declaration")
}

// hostFS reads files at the paths given on the command line, relative to the working
// directory or absolute.
type hostFS struct{}

func (hostFS) Open(name string) (fs.File, error)     { return os.Open(name) }
func (hostFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func loadUnits(cmd *cobra.Command, args []string) ([]*tyck.Unit, error) {
	log.SetLevel(slog.Level(logLevel))
	units, err := tyck.CheckAll(cmd.Context(), hostFS{}, args, jobs)
	if err != nil {
		return nil, fmt.Errorf("could not check (this is a bug and not a type error): %w", err)
	}
	return units, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	units, err := loadUnits(cmd, args)
	if err != nil {
		return err
	}
	problems, err := writeCheck(cmd.OutOrStdout(), units, *showTypes)
	if err != nil {
		return err
	}
	if problems > 0 {
		return fmt.Errorf("found %d problems", problems)
	}
	return nil
}

// writeCheck prints the diagnostics of units, and their types if showTypes is set.
// It returns the number of diagnostics.
func writeCheck(w io.Writer, units []*tyck.Unit, showTypes bool) (int, error) {
	problems := 0
	for _, u := range units {
		for _, line := range u.Diagnostics() {
			problems++
			if _, err := fmt.Fprintln(w, line); err != nil {
				return problems, err
			}
		}
	}
	if !showTypes {
		return problems, nil
	}
	for _, u := range units {
		for _, decl := range u.Declarations() {
			if _, err := fmt.Fprintf(w, "%s: %s :: %s\n", u.Name(), decl.Name, u.TypeOf(decl.Decl)); err != nil {
				return problems, err
			}
		}
	}
	return problems, nil
}
