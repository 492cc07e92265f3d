package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portflow/portflow/internal/adapters/repository/sqlite"
	"github.com/portflow/portflow/internal/nodes"
	"github.com/portflow/portflow/pkg/serialization"
)

func defaultLibraryPath() string {
	if p := os.Getenv("PORTFLOW_LIBRARY"); p != "" {
		return p
	}
	return "portflow.db"
}

// newLibraryCmd manages the local SQLite flow library.
func newLibraryCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the local flow library",
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", defaultLibraryPath(), "Path to the library database")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sqlite.Open(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer store.Close()
			flows, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, sf := range flows {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %d nodes  %s\n",
					sf.Name, len(sf.Document.Nodes), sf.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	var importName string
	importCmd := &cobra.Command{
		Use:   "import <flow-file>",
		Short: "Store a flow file in the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// Full decode so malformed files are rejected at import time.
			f, err := serialization.DecodeFlow(data, nodes.DefaultRegistry())
			if err != nil {
				return err
			}
			name := importName
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			store, err := sqlite.Open(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), name, serialization.BuildDocument(f)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %q\n", name)
			return nil
		},
	}
	importCmd.Flags().StringVar(&importName, "name", "", "Library name (defaults to the file name)")

	exportCmd := &cobra.Command{
		Use:   "export <name> <flow-file>",
		Short: "Write a stored flow back to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.Open(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer store.Close()
			sf, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f, err := serialization.InstantiateDocument(sf.Document, nodes.DefaultRegistry())
			if err != nil {
				return err
			}
			data, err := serialization.EncodeFlow(f)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], data, 0o644)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.Open(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(listCmd, importCmd, exportCmd, deleteCmd)
	return cmd
}
