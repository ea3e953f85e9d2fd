package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cottand/tyck/tyck"
	"github.com/spf13/cobra"
)

var DepsCmd = &cobra.Command{
	Use:          "deps file.yaml...",
	Short:        "Print the order declarations are checked in",
	Long:         "Print the groups of mutually recursive declarations of each file, one per line, in the order they are checked in.",
	RunE:         runDeps,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	DepsCmd.Flags().IntVarP(&logLevel, "log-level", "l", int(slog.LevelError), "log level")
}

func runDeps(cmd *cobra.Command, args []string) error {
	units, err := loadUnits(cmd, args)
	if err != nil {
		return err
	}
	return writeDeps(cmd.OutOrStdout(), units)
}

func writeDeps(w io.Writer, units []*tyck.Unit) error {
	for _, u := range units {
		if _, err := fmt.Fprintln(w, u.Name()); err != nil {
			return err
		}
		for i, group := range u.Groups() {
			names := make([]string, len(group))
			for j, decl := range group {
				names[j] = tyck.DeclName(decl)
			}
			if _, err := fmt.Fprintf(w, "  %d: %s\n", i, strings.Join(names, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}
