// Package filestation holds the requests of the SYNO.FileStation namespace.
//
// Every File Station API requires a session opened with session name
// "FileStation", see api.Authenticate.
package filestation

import (
	"strconv"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// SessionName is the login session every File Station request needs.
const SessionName = "FileStation"

// API names.
const (
	InfoAPI         = "SYNO.FileStation.Info"
	ListAPI         = "SYNO.FileStation.List"
	ThumbAPI        = "SYNO.FileStation.Thumb"
	UploadAPI       = "SYNO.FileStation.Upload"
	DownloadAPI     = "SYNO.FileStation.Download"
	CreateFolderAPI = "SYNO.FileStation.CreateFolder"
	RenameAPI       = "SYNO.FileStation.Rename"
	CopyMoveAPI     = "SYNO.FileStation.CopyMove"
	DeleteAPI       = "SYNO.FileStation.Delete"
)

// SortBy selects the file information to sort on.
type SortBy string

// Sort keys.
const (
	SortByName  SortBy = "name"
	SortBySize  SortBy = "size"
	SortByUser  SortBy = "user"
	SortByGroup SortBy = "group"
	// SortByModified sorts on the last modified time.
	SortByModified SortBy = "mtime"
	// SortByAccessed sorts on the last access time.
	SortByAccessed SortBy = "atime"
	// SortByChanged sorts on the last change time.
	SortByChanged SortBy = "ctime"
	// SortByCreated sorts on the create time.
	SortByCreated SortBy = "crtime"
	SortByPosix   SortBy = "posix"
	// SortByType sorts on the file extension.
	SortByType SortBy = "type"
)

// WireValue implements dsm.Value.
func (s SortBy) WireValue(dsm.Version) (string, error) { return string(s), nil }

// SortDirection selects ascending or descending order.
type SortDirection string

// Sort directions.
const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// WireValue implements dsm.Value.
func (s SortDirection) WireValue(dsm.Version) (string, error) { return string(s), nil }

// FileType filters listed entries.
type FileType string

// File types.
const (
	FileTypeFile FileType = "file"
	FileTypeDir  FileType = "dir"
	FileTypeAll  FileType = "all"
)

// WireValue implements dsm.Value.
func (f FileType) WireValue(dsm.Version) (string, error) { return string(f), nil }

// Additional names optional information returned with listed entries.
type Additional string

// Additional information shared by files and shared folders.
const (
	AdditionalRealPath       Additional = "real_path"
	AdditionalSize           Additional = "size"
	AdditionalOwner          Additional = "owner"
	AdditionalTime           Additional = "time"
	AdditionalPerm           Additional = "perm"
	AdditionalMountPointType Additional = "mount_point_type"
	// AdditionalType returns the file extension. Files only.
	AdditionalType Additional = "type"
	// AdditionalVolumeStatus returns free and total space. Shared folders only.
	AdditionalVolumeStatus Additional = "volume_status"
)

// WireValue implements dsm.Value.
func (a Additional) WireValue(dsm.Version) (string, error) { return string(a), nil }

// AdditionalSet is a set of Additional values.
type AdditionalSet = dsm.Set[Additional]

// Additionals returns a set holding values.
func Additionals(values ...Additional) AdditionalSet {
	return dsm.NewSet(values...)
}

// ThumbSize selects the size of a thumbnail.
type ThumbSize string

// Thumbnail sizes.
const (
	ThumbSmall    ThumbSize = "small"
	ThumbMedium   ThumbSize = "medium"
	ThumbLarge    ThumbSize = "large"
	ThumbOriginal ThumbSize = "original"
)

// WireValue implements dsm.Value.
func (s ThumbSize) WireValue(dsm.Version) (string, error) { return string(s), nil }

// Rotation rotates a thumbnail in steps of 90 degrees.
type Rotation int

// Rotations.
const (
	RotateNone Rotation = iota
	Rotate90
	Rotate180
	Rotate270
	Rotate360
)

// WireValue implements dsm.Value.
func (r Rotation) WireValue(dsm.Version) (string, error) { return strconv.Itoa(int(r)), nil }

// DownloadMode selects how the browser should treat a download.
type DownloadMode string

// Download modes.
const (
	DownloadOpen     DownloadMode = "open"
	DownloadDownload DownloadMode = "download"
)

// WireValue implements dsm.Value.
func (m DownloadMode) WireValue(dsm.Version) (string, error) { return string(m), nil }
