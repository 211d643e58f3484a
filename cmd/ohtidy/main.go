package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)
	root := &cobra.Command{
		Use:           "ohtidy",
		Short:         "Turn nested occupational-health profiles into tidy tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd())
	root.AddCommand(newSubjectsCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newStatsCmd())

	if err := root.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
