package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quantifiedwork/ohtidy/internal/loader"
	"github.com/quantifiedwork/ohtidy/internal/ohpath"
)

func newSubjectsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List subject ids found in a profiles directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := loader.DiscoverProfiles(dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(loader.SubjectID(p))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "profiles directory")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var (
		dir     string
		subject string
		path    string
		depth   int
		find    string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the structure of one subject's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			file := filepath.Join(dir, subject+loader.ProfileSuffix)
			profile, err := loader.LoadProfile(file)
			if err != nil {
				return err
			}
			if find != "" {
				matches, err := ohpath.FindPathsMatching(profile, find, 0)
				if err != nil {
					return err
				}
				for _, m := range matches {
					fmt.Println(m)
				}
				return nil
			}
			summary := ohpath.StructureSummary(profile, path, depth)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "profiles directory")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject id")
	cmd.Flags().StringVarP(&path, "path", "p", "", "dot-path to summarize under")
	cmd.Flags().IntVar(&depth, "depth", 0, "max summary depth (0 = default)")
	cmd.Flags().StringVar(&find, "find", "", "print dotted paths matching a glob instead")
	cmd.MarkFlagRequired("subject")
	return cmd
}
