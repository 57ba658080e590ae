package filestation

import (
	"time"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// GetInfo returns the request for File Station information. The method is
// "getinfo" at version 1 and "get" from version 2.
func GetInfo() *dsm.Request[Info] {
	method := dsm.NewVariant("get", 2, dsm.Entry[string]{Value: "getinfo", From: 1})

	return dsm.NewRequest[Info](InfoAPI, method, dsm.Versions(1, 2), nil, dsm.WithErrors(dsm.FileStation))
}

// ListShareOptions are the parameters of ListShare.
type ListShareOptions struct {
	Offset        int
	Limit         int
	SortBy        SortBy
	SortDirection SortDirection
	// OnlyWritable hides read-only shared folders.
	OnlyWritable bool
	Additional   AdditionalSet
}

// ListShare returns the request listing shared folders.
func ListShare(opts ListShareOptions) *dsm.Request[ShareList] {
	return dsm.NewRequest[ShareList](ListAPI, dsm.Always("list_share"), dsm.Versions(1, 2), func(enc *dsm.Encoder) {
		encodePage(enc, opts.Offset, opts.Limit, opts.SortBy, opts.SortDirection)

		if opts.OnlyWritable {
			enc.Set("onlywritable", dsm.Bool(true))
		}

		encodeAdditional(enc, opts.Additional)
	}, dsm.WithErrors(dsm.FileStation))
}

// ListOptions are the parameters of List.
type ListOptions struct {
	// FolderPath is the folder to enumerate, starting with a shared folder.
	FolderPath    string
	Offset        int
	Limit         int
	SortBy        SortBy
	SortDirection SortDirection
	// Pattern filters names with comma separated glob patterns.
	Pattern  string
	FileType FileType
	// GotoPath returns every entry between FolderPath and GotoPath.
	GotoPath   string
	Additional AdditionalSet
}

// List returns the request enumerating a folder.
func List(opts ListOptions) *dsm.Request[FileList] {
	return dsm.NewRequest[FileList](ListAPI, dsm.Always("list"), dsm.Versions(1, 2), func(enc *dsm.Encoder) {
		enc.Set("folder_path", dsm.Path(opts.FolderPath))
		encodePage(enc, opts.Offset, opts.Limit, opts.SortBy, opts.SortDirection)

		if opts.Pattern != "" {
			enc.Set("pattern", dsm.String(opts.Pattern))
		}

		if opts.FileType != "" {
			enc.Set("filetype", opts.FileType)
		}

		if opts.GotoPath != "" {
			enc.Set("goto_path", dsm.Path(opts.GotoPath))
		}

		encodeAdditional(enc, opts.Additional)
	}, dsm.WithErrors(dsm.FileStation))
}

func encodePage(enc *dsm.Encoder, offset, limit int, sortBy SortBy, direction SortDirection) {
	if offset > 0 {
		enc.Set("offset", dsm.Int(offset))
	}

	if limit > 0 {
		enc.Set("limit", dsm.Int(limit))
	}

	if sortBy != "" {
		enc.Set("sort_by", sortBy)
	}

	if direction != "" {
		enc.Set("sort_direction", direction)
	}
}

func encodeAdditional(enc *dsm.Encoder, additional AdditionalSet) {
	if additional.Len() > 0 {
		enc.Set("additional", additional)
	}
}

// Thumbnail returns the request for a thumbnail of path. The response body
// is image data, see Fetch.
func Thumbnail(path string, size ThumbSize, rotate Rotation) *dsm.Request[[]byte] {
	return dsm.NewRequest[[]byte](ThumbAPI, dsm.Always("get"), dsm.Versions(1, 2), func(enc *dsm.Encoder) {
		enc.Set("path", dsm.Path(path))
		enc.Set("size", size)

		if rotate != RotateNone {
			enc.Set("rotate", rotate)
		}
	}, dsm.WithErrors(dsm.FileStation))
}

// UploadOptions are the parameters of Upload.
type UploadOptions struct {
	// Path is the destination folder.
	Path string
	// CreateParents creates missing parent folders.
	CreateParents bool
	// Overwrite, when set, overwrites or skips an existing file. Without it
	// the server fails with code 1805 when the file exists.
	Overwrite *bool
	// ModifiedAt, CreatedAt and AccessedAt are sent when not zero.
	ModifiedAt time.Time
	CreatedAt  time.Time
	AccessedAt time.Time
	File       dsm.File
}

// Upload returns the multipart upload request. The destination parameter
// is "dest_folder_path" at version 1 and "path" from version 2. The file is
// always the last part.
func Upload(opts UploadOptions) *dsm.Request[UploadData] {
	destination := dsm.NewVariant("path", 2, dsm.Entry[string]{Value: "dest_folder_path", From: 1})

	return dsm.NewRequest[UploadData](UploadAPI, dsm.Always("upload"), dsm.Versions(1, 2), func(enc *dsm.Encoder) {
		enc.Add(destination, dsm.String(opts.Path), 1)
		enc.Set("create_parents", dsm.Bool(opts.CreateParents))

		if opts.Overwrite != nil {
			enc.Set("overwrite", dsm.Bool(*opts.Overwrite))
		}

		setDate(enc, "mtime", opts.ModifiedAt)
		setDate(enc, "crtime", opts.CreatedAt)
		setDate(enc, "atime", opts.AccessedAt)

		enc.Set("file", opts.File)
	}, dsm.WithMultipart(), dsm.WithErrors(dsm.Upload))
}

func setDate(enc *dsm.Encoder, name string, t time.Time) {
	if !t.IsZero() {
		enc.Set(name, dsm.Date(t))
	}
}

// Download returns the request downloading path. The response body is the
// file content, see Fetch.
func Download(path string, mode DownloadMode) *dsm.Request[[]byte] {
	if mode == "" {
		mode = DownloadDownload
	}

	return dsm.NewRequest[[]byte](DownloadAPI, dsm.Always("download"), dsm.Versions(1, 1), func(enc *dsm.Encoder) {
		enc.Set("path", dsm.Path(path))
		enc.Set("mode", mode)
	}, dsm.WithErrors(dsm.FileStation))
}

// FolderItem is one folder to create.
type FolderItem struct {
	// FolderPath is the parent folder.
	FolderPath string
	Name       string
}

// CreateFolderOptions are the parameters of CreateFolder.
type CreateFolderOptions struct {
	Items []FolderItem
	// ForceParent creates missing parent folders.
	ForceParent bool
	Additional  AdditionalSet
}

// CreateFolder returns the request creating folders.
func CreateFolder(opts CreateFolderOptions) *dsm.Request[CreateFolderData] {
	paths := make(dsm.List, 0, len(opts.Items))
	names := make(dsm.List, 0, len(opts.Items))

	for _, item := range opts.Items {
		paths = append(paths, item.FolderPath)
		names = append(names, item.Name)
	}

	return dsm.NewRequest[CreateFolderData](CreateFolderAPI, dsm.Always("create"), dsm.Versions(1, 2), func(enc *dsm.Encoder) {
		enc.Set("folder_path", paths)
		enc.Set("name", names)

		if opts.ForceParent {
			enc.Set("force_parent", dsm.Bool(true))
		}

		encodeAdditional(enc, opts.Additional)
	}, dsm.WithErrors(dsm.CreateFolder))
}

// RenameItem is one entry to rename.
type RenameItem struct {
	Path string
	Name string
}

// RenameOptions are the parameters of Rename.
type RenameOptions struct {
	Items      []RenameItem
	Additional AdditionalSet
	// SearchTaskID updates the renamed entries in a search result.
	SearchTaskID string
}

// Rename returns the request renaming entries.
func Rename(opts RenameOptions) *dsm.Request[RenameData] {
	paths := make(dsm.List, 0, len(opts.Items))
	names := make(dsm.List, 0, len(opts.Items))

	for _, item := range opts.Items {
		paths = append(paths, item.Path)
		names = append(names, item.Name)
	}

	return dsm.NewRequest[RenameData](RenameAPI, dsm.Always("rename"), dsm.Versions(1, 2), func(enc *dsm.Encoder) {
		enc.Set("path", paths)
		enc.Set("name", names)
		encodeAdditional(enc, opts.Additional)

		if opts.SearchTaskID != "" {
			enc.Set("search_taskid", dsm.String(opts.SearchTaskID))
		}
	}, dsm.WithErrors(dsm.Rename))
}

// CopyMoveOptions are the parameters of CopyMoveStart.
type CopyMoveOptions struct {
	Paths          []string
	DestFolderPath string
	Overwrite      *bool
	// RemoveSource turns the copy into a move.
	RemoveSource     bool
	AccurateProgress bool
	SearchTaskID     string
}

// CopyMoveStart returns the request starting a copy or move task.
func CopyMoveStart(opts CopyMoveOptions) *dsm.Request[TaskData] {
	return dsm.NewRequest[TaskData](CopyMoveAPI, dsm.Always("start"), dsm.Versions(1, 1), func(enc *dsm.Encoder) {
		enc.Set("path", dsm.List(opts.Paths))
		enc.Set("dest_folder_path", dsm.Path(opts.DestFolderPath))

		if opts.Overwrite != nil {
			enc.Set("overwrite", dsm.Bool(*opts.Overwrite))
		}

		if opts.RemoveSource {
			enc.Set("remove_src", dsm.Bool(true))
		}

		if opts.AccurateProgress {
			enc.Set("accurate_progress", dsm.Bool(true))
		}

		if opts.SearchTaskID != "" {
			enc.Set("search_taskid", dsm.String(opts.SearchTaskID))
		}
	}, dsm.WithErrors(dsm.CopyMove))
}

// CopyMoveStatusRequest returns the request polling a copy or move task.
func CopyMoveStatusRequest(taskID string) *dsm.Request[CopyMoveStatus] {
	return taskRequest[CopyMoveStatus](CopyMoveAPI, "status", taskID, dsm.CopyMove)
}

// CopyMoveStop returns the request stopping a copy or move task.
func CopyMoveStop(taskID string) *dsm.Request[struct{}] {
	return taskRequest[struct{}](CopyMoveAPI, "stop", taskID, dsm.CopyMove)
}

// DeleteOptions are the parameters of DeleteStart.
type DeleteOptions struct {
	Paths            []string
	AccurateProgress bool
	// Recursive deletes folder content. Servers default to true.
	Recursive    *bool
	SearchTaskID string
}

// DeleteStart returns the request starting a delete task.
func DeleteStart(opts DeleteOptions) *dsm.Request[TaskData] {
	return dsm.NewRequest[TaskData](DeleteAPI, dsm.Always("start"), dsm.Versions(1, 1), func(enc *dsm.Encoder) {
		enc.Set("path", dsm.List(opts.Paths))

		if opts.AccurateProgress {
			enc.Set("accurate_progress", dsm.Bool(true))
		}

		if opts.Recursive != nil {
			enc.Set("recursive", dsm.Bool(*opts.Recursive))
		}

		if opts.SearchTaskID != "" {
			enc.Set("search_taskid", dsm.String(opts.SearchTaskID))
		}
	}, dsm.WithErrors(dsm.Delete))
}

// DeleteStatusRequest returns the request polling a delete task.
func DeleteStatusRequest(taskID string) *dsm.Request[DeleteStatus] {
	return taskRequest[DeleteStatus](DeleteAPI, "status", taskID, dsm.Delete)
}

// DeleteStop returns the request stopping a delete task.
func DeleteStop(taskID string) *dsm.Request[struct{}] {
	return taskRequest[struct{}](DeleteAPI, "stop", taskID, dsm.Delete)
}

func taskRequest[T any](api, method, taskID string, taxonomy *dsm.Taxonomy) *dsm.Request[T] {
	return dsm.NewRequest[T](api, dsm.Always(method), dsm.Versions(1, 1), func(enc *dsm.Encoder) {
		enc.Set("taskid", dsm.String(taskID))
	}, dsm.WithErrors(taxonomy))
}
