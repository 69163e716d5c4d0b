// Command imgctl uploads and inspects profile images from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/petermazzocco/go-profile-images/internal/app"
	"github.com/petermazzocco/go-profile-images/internal/config"
	"github.com/petermazzocco/go-profile-images/internal/upload"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "imgctl",
		Short:        "Manage profile images",
		SilenceUsage: true,
	}
	root.AddCommand(newUploadCmd(), newURLCmd(), newMigrateCmd())
	return root
}

func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newUploadCmd() *cobra.Command {
	var owner, contentType string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a profile image and its thumbnail for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(path))
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Uploads.Upload(cmd.Context(), upload.Request{
					Owner:       owner,
					FileName:    filepath.Base(path),
					ContentType: contentType,
					Size:        info.Size(),
					Body:        f,
				})
				if res != nil {
					if encErr := printJSON(cmd, res); encErr != nil {
						return encErr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "nickname of the owning user")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type of the file (default: from extension)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newURLCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the original and thumbnail URLs of a user's profile image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				p, err := a.Uploads.ProfileImage(cmd.Context(), owner)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"original_url":  p.OriginalURL,
					"thumbnail_url": p.ThumbnailURL,
				})
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "nickname of the owning user")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// app.New migrates on startup.
			return withApp(cmd.Context(), func(a *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog migrated")
				return nil
			})
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
