package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Inspect compatibility matrices",
}

var matrixValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a compatibility matrix file",
	Long:  "Parses the matrix, checks squareness, symmetry, and value range, and prints the category list and version fingerprint.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("matrix") {
			cfg.Matrix.Path = runMatrix
		}
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		syn, err := loadSynonyms()
		if err != nil {
			return err
		}
		m, err := loadMatrix(syn)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Version:\t%s\n", m.Version())
		fmt.Fprintf(w, "Categories:\t%d\n", m.Size())
		for _, c := range m.Categories() {
			fmt.Fprintf(w, "\t%s\n", c)
		}
		return w.Flush()
	},
}

func init() {
	matrixValidateCmd.Flags().StringVar(&runMatrix, "matrix", "", "compatibility matrix path (.csv or .xlsx)")
	matrixCmd.AddCommand(matrixValidateCmd)
	rootCmd.AddCommand(matrixCmd)
}
