package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var (
		parents   bool
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "upload LOCAL_FILE FOLDER",
		Short: "Upload a file",
		Long: `Upload a local file into a folder.

Without --overwrite the server decides; pass --overwrite=false to skip an
existing file instead of failing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stat, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if !stat.Mode().IsRegular() {
				return fmt.Errorf("%w: %s", ErrNotRegularFile, args[0])
			}

			opts := filestation.UploadOptions{
				Path:          args[1],
				CreateParents: parents,
				ModifiedAt:    stat.ModTime(),
				File:          dsm.LocalFile(args[0]),
			}

			if cmd.Flags().Changed("overwrite") {
				opts.Overwrite = &overwrite
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			uploaded, err := dsm.Get(cmd.Context(), client, filestation.Upload(opts))
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", args[0], err)
			}

			return renderOutput(cmd.OutOrStdout(), uploaded, func(table *tablewriter.Table) {
				table.Header("File", "Folder", "Size", "Skipped")
				_ = table.Append(stat.Name(), args[1], formatBytes(stat.Size()), formatBool(uploaded.Skipped))
			})
		},
	}

	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent folders")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite an existing file (false skips it)")

	return cmd
}

// NewDownloadCommand creates the download command
func NewDownloadCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "download REMOTE_FILE [LOCAL_FILE]",
		Short: "Download a file",
		Long:  "Download a file; LOCAL_FILE defaults to the remote name in the current directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination := path.Base(args[0])
			if len(args) == 2 {
				destination = args[1]
			}

			if _, err := os.Stat(destination); err == nil && !force {
				return fmt.Errorf("%w: %s", ErrDestinationExists, destination)
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			content, err := filestation.Fetch(cmd.Context(), client, filestation.Download(args[0], filestation.DownloadDownload))
			if err != nil {
				return fmt.Errorf("failed to download %s: %w", args[0], err)
			}

			if err := os.WriteFile(destination, content, constants.DownloadFilePerm); err != nil {
				return fmt.Errorf("failed to write %s: %w", destination, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s to %s (%s)\n", args[0], destination, formatBytes(int64(len(content))))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing local file")

	return cmd
}
