package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/archive"
	"github.com/fakeyudi/worktime/internal/report"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List reports stored with report --archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			cmd.Println("No archived runs.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tGENERATED\tDAYS\tRANGE\tTOTAL\tDIAGNOSTICS\tSOURCE")
		for _, r := range runs {
			span := r.FirstDay
			if r.LastDay != r.FirstDay {
				span += ".." + r.LastDay
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
				shortID(r.ID),
				r.GeneratedAt.Local().Format("2006-01-02 15:04"),
				r.Days,
				span,
				report.Clock(r.Total),
				r.Diagnostics,
				r.SourcePath,
			)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renderer, err := report.RendererFor(historyFormat)
		if err != nil {
			return err
		}
		data, err := renderer.Render(r)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Delete an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), r.RunID); err != nil {
			return err
		}
		cmd.Printf("Deleted run %s\n", r.RunID)
		return nil
	},
}

func openArchive() (*archive.Store, error) {
	path, err := archivePath()
	if err != nil {
		return nil, err
	}
	return archive.Open(path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list, 0 for all")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "output format: text, markdown, json, html")
	historyCmd.AddCommand(historyShowCmd, historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}
