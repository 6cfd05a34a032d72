package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	userdex "github.com/kailas-cloud/userdex/pkg/sdk"
)

var errRejected = errors.New("rejected by elasticsearch")

func newCreateIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-index [name]",
		Short: "Create an index if it does not exist (defaults to the configured index)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := newSDKClient(cmd, rt)
			if err != nil {
				return err
			}
			defer c.Close()

			name := c.Index()
			if len(args) == 1 {
				name = args[0]
			}
			if err := c.Users().CreateIndexIfNotExists(cmd.Context(), name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Index %s created or already exist.\n", name)
			return nil
		},
	}
}

func newBulkLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-load <file.json>",
		Short: "Upsert a JSON array of users in one bulk request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := readUsersFile(args[0])
			if err != nil {
				return err
			}

			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := newSDKClient(cmd, rt)
			if err != nil {
				return err
			}
			defer c.Close()

			ok, err := c.Users().AddOrUpdateBulk(cmd.Context(), users, c.Index())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("bulk load %d users: %w", len(users), errRejected)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d users into %s.\n", len(users), c.Index())
			return nil
		},
	}
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every user from the configured index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := newSDKClient(cmd, rt)
			if err != nil {
				return err
			}
			defer c.Close()

			n, ok, err := c.Users().RemoveAll(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("purge %s: %w", c.Index(), errRejected)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d users from %s.\n", n, c.Index())
			return nil
		},
	}
}

// readUsersFile decodes a JSON array of users. "-" reads stdin.
func readUsersFile(path string) ([]userdex.User, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var users []userdex.User
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return users, nil
}
