package commands

import (
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var sortFields = map[string]filestation.SortBy{
	"name":   filestation.SortByName,
	"size":   filestation.SortBySize,
	"user":   filestation.SortByUser,
	"group":  filestation.SortByGroup,
	"mtime":  filestation.SortByModified,
	"atime":  filestation.SortByAccessed,
	"ctime":  filestation.SortByChanged,
	"crtime": filestation.SortByCreated,
	"posix":  filestation.SortByPosix,
	"type":   filestation.SortByType,
}

func parseSort(field string, descending bool) (filestation.SortBy, filestation.SortDirection, error) {
	var direction filestation.SortDirection
	if descending {
		direction = filestation.SortDescending
	}

	if field == "" {
		return "", direction, nil
	}

	sortBy, ok := sortFields[field]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidSortField, field)
	}

	return sortBy, direction, nil
}

// NewSharesCommand creates the shares command
func NewSharesCommand() *cobra.Command {
	var (
		offset     int
		limit      int
		sortBy     string
		descending bool
		writable   bool
	)

	cmd := &cobra.Command{
		Use:     "shares",
		Aliases: []string{"share"},
		Short:   "List shared folders",
		Long:    "List the shared folders visible to the session with their volume usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			by, direction, err := parseSort(sortBy, descending)
			if err != nil {
				return err
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			shares, err := dsm.Get(cmd.Context(), client, filestation.ListShare(filestation.ListShareOptions{
				Offset:        offset,
				Limit:         limit,
				SortBy:        by,
				SortDirection: direction,
				OnlyWritable:  writable,
				Additional:    filestation.Additionals(filestation.AdditionalRealPath, filestation.AdditionalVolumeStatus),
			}))
			if err != nil {
				return fmt.Errorf("failed to list shares: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), shares, func(table *tablewriter.Table) {
				table.Header("Name", "Path", "Free", "Total", "Read Only")

				for _, share := range shares.Shares {
					free, total, readOnly := "", "", ""

					if share.Additional != nil && share.Additional.VolumeStatus != nil {
						status := share.Additional.VolumeStatus
						free = formatBytes(status.FreeSpace)
						total = formatBytes(status.TotalSpace)
						readOnly = formatBool(status.ReadOnly)
					}

					_ = table.Append(share.Name, share.Path, free, total, readOnly)
				}
			})
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "number of shares to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of shares (0 for all)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort field (name, user, group, mtime, atime, ctime, crtime, posix)")
	cmd.Flags().BoolVar(&descending, "desc", false, "sort in descending order")
	cmd.Flags().BoolVar(&writable, "writable", false, "only show writable shares")

	return cmd
}

// NewListCommand creates the ls command
func NewListCommand() *cobra.Command {
	var (
		offset     int
		limit      int
		sortBy     string
		descending bool
		pattern    string
		fileType   string
	)

	cmd := &cobra.Command{
		Use:     "ls FOLDER",
		Aliases: []string{"list"},
		Short:   "List a folder",
		Long:    "List the files and folders in a folder, for example /home or /photo/2024",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			by, direction, err := parseSort(sortBy, descending)
			if err != nil {
				return err
			}

			kind := filestation.FileType(fileType)
			switch kind {
			case "", filestation.FileTypeFile, filestation.FileTypeDir, filestation.FileTypeAll:
			default:
				return fmt.Errorf("%w: %s", ErrInvalidFileType, fileType)
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			files, err := dsm.Get(cmd.Context(), client, filestation.List(filestation.ListOptions{
				FolderPath:    args[0],
				Offset:        offset,
				Limit:         limit,
				SortBy:        by,
				SortDirection: direction,
				Pattern:       pattern,
				FileType:      kind,
				Additional:    filestation.Additionals(filestation.AdditionalSize, filestation.AdditionalTime, filestation.AdditionalOwner),
			}))
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", args[0], err)
			}

			return renderOutput(cmd.OutOrStdout(), files, func(table *tablewriter.Table) {
				table.Header("Name", "Type", "Size", "Owner", "Modified")

				for _, file := range files.Files {
					_ = table.Append(fileRow(file)...)
				}
			})
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "number of entries to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort field (name, size, user, group, mtime, atime, ctime, crtime, posix, type)")
	cmd.Flags().BoolVar(&descending, "desc", false, "sort in descending order")
	cmd.Flags().StringVar(&pattern, "pattern", "", "comma separated glob patterns to match")
	cmd.Flags().StringVar(&fileType, "type", "", "only list entries of this type (file, dir, all)")

	return cmd
}

func fileRow(file filestation.File) []interface{} {
	kind, size, owner, modified := "file", "", "", ""

	if file.IsDir {
		kind = "dir"
	}

	if file.Additional != nil {
		if !file.IsDir {
			size = formatBytes(file.Additional.Size)
		}

		if file.Additional.Owner != nil {
			owner = file.Additional.Owner.User
		}

		if file.Additional.Time != nil {
			modified = time.Unix(file.Additional.Time.Modified, 0).UTC().Format(time.RFC3339)
		}
	}

	return []interface{}{file.Name, kind, size, owner, modified}
}

// NewMkdirCommand creates the mkdir command
func NewMkdirCommand() *cobra.Command {
	var parents bool

	cmd := &cobra.Command{
		Use:   "mkdir PATH...",
		Short: "Create folders",
		Long:  "Create one or more folders, for example /home/reports/2024",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]filestation.FolderItem, 0, len(args))
			for _, arg := range args {
				clean := path.Clean(arg)
				items = append(items, filestation.FolderItem{FolderPath: path.Dir(clean), Name: path.Base(clean)})
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			created, err := dsm.Get(cmd.Context(), client, filestation.CreateFolder(filestation.CreateFolderOptions{
				Items:       items,
				ForceParent: parents,
			}))
			if err != nil {
				return fmt.Errorf("failed to create folders: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), created, func(table *tablewriter.Table) {
				table.Header("Created")

				for _, folder := range created.Folders {
					_ = table.Append(folder.Path)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent folders")

	return cmd
}

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename PATH NEW_NAME",
		Short: "Rename a file or folder",
		Long:  "Rename a file or folder in place; NEW_NAME is a name, not a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			renamed, err := dsm.Get(cmd.Context(), client, filestation.Rename(filestation.RenameOptions{
				Items: []filestation.RenameItem{{Path: args[0], Name: args[1]}},
			}))
			if err != nil {
				return fmt.Errorf("failed to rename %s: %w", args[0], err)
			}

			return renderOutput(cmd.OutOrStdout(), renamed, func(table *tablewriter.Table) {
				table.Header("Name", "Path", "Directory")

				for _, file := range renamed.Files {
					_ = table.Append(file.Name, file.Path, strconv.FormatBool(file.IsDir))
				}
			})
		},
	}
}
