package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"filekeep/internal/core"

	"github.com/spf13/cobra"
)

var errNoToken = errors.New("no session token: run `filekeep login` and pass --token or set FILEKEEP_TOKEN")

func (o *globalOptions) client(requireToken bool) (*core.Client, error) {
	if requireToken && o.token == "" {
		return nil, errNoToken
	}
	return core.NewClient(o.server, o.token), nil
}

func loginCmd(opts *globalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(false)
			if err != nil {
				return err
			}
			token, err := c.Connect(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(true)
			if err != nil {
				return err
			}
			return c.Disconnect(cmd.Context())
		},
	}
}

func pushCmd(opts *globalOptions) *cobra.Command {
	var (
		parent string
		public bool
	)

	cmd := &cobra.Command{
		Use:   "push <paths...>",
		Short: "Upload files and directories, recreating directories as folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := core.ParseParentID(parent)
			if err != nil {
				return err
			}
			paths, err := core.ParseArgs(args)
			if err != nil {
				return err
			}
			tree, err := core.BuildFiletree(paths)
			if err != nil {
				return fmt.Errorf("failed to build file tree: %w", err)
			}
			c, err := opts.client(true)
			if err != nil {
				return err
			}

			dirs, files := tree.Counts()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pushing %d folders and %d files\n", dirs, files)

			pushed, err := core.Push(cmd.Context(), c, tree, parentID, public)
			for _, p := range pushed {
				fmt.Fprintf(out, "✓ %s -> %s\n", p.Node.Path(), p.Remote.ID)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&parent, "parent", core.RootID, "id of the folder to push into")
	cmd.Flags().BoolVar(&public, "public", false, "make pushed files public")
	return cmd
}

func lsCmd(opts *globalOptions) *cobra.Command {
	var (
		parent string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List one page of files under a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := core.ParseParentID(parent)
			if err != nil {
				return err
			}
			c, err := opts.client(true)
			if err != nil {
				return err
			}
			files, err := c.ListFiles(cmd.Context(), parentID, page)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tPUBLIC\tNAME")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", f.ID, f.Type, f.IsPublic, f.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&parent, "parent", core.RootID, "folder id")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	return cmd
}

func visibilityCmd(opts *globalOptions, use string, public bool) *cobra.Command {
	short := "Make a file private"
	if public {
		short = "Make a file public"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseFileID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client(true)
			if err != nil {
				return err
			}

			var f *core.RemoteFile
			if public {
				f, err = c.Publish(cmd.Context(), id)
			} else {
				f, err = c.Unpublish(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s public=%t\n", f.ID, f.Name, f.IsPublic)
			return nil
		},
	}
}
