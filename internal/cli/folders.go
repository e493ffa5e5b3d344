package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/practica/practica-link/internal/folders"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Browse folders on the Practica platform",
	}

	cmd.AddCommand(newFoldersListCmd())
	cmd.AddCommand(newFoldersTreeCmd())
	return cmd
}

func newFoldersListCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders (top level, or children with --parent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newAPIClient()
			if err != nil {
				return err
			}

			list, err := client.BrowseFolders(GetContext(), parentID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No folders.")
				return nil
			}
			for _, f := range list {
				fmt.Printf("%-10s %s\n", f.ID, f.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "Parent folder id")
	return cmd
}

func newFoldersTreeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree",
		Long: `Print the folder hierarchy. Each level is fetched on demand, so
--depth bounds how much of the tree goes over the wire.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newAPIClient()
			if err != nil {
				return err
			}

			browser := folders.NewBrowser(client, GetLogger())
			ctx := GetContext()
			if err := browser.LoadRoots(ctx); err != nil {
				return err
			}

			for _, root := range browser.Roots() {
				if err := printTree(ctx, browser, root.ID, 0, depth); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 2, "Levels to descend")
	return cmd
}

func printTree(ctx context.Context, browser *folders.Browser, id string, level, maxDepth int) error {
	children, err := browser.Children(id)
	if err != nil {
		return err
	}
	if !browser.IsLoaded(id) && level < maxDepth {
		if err := browser.Expand(ctx, id); err != nil {
			return err
		}
		children, err = browser.Children(id)
		if err != nil {
			return err
		}
	}

	name := "?"
	if path, err := browser.Path(id); err == nil {
		parts := strings.Split(path, " / ")
		name = parts[len(parts)-1]
	}
	fmt.Printf("%s%s  (%s)\n", strings.Repeat("  ", level), name, id)

	for _, child := range children {
		if err := printTree(ctx, browser, child.ID, level+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
