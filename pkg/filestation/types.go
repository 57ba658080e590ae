package filestation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// Info describes the File Station of the server.
type Info struct {
	IsManager bool `json:"is_manager" yaml:"is_manager"`
	// VirtualProtocols are the virtual file systems the user may mount,
	// e.g. cifs, nfs and iso.
	VirtualProtocols []string        `json:"support_virtual_protocol" yaml:"support_virtual_protocol"`
	SupportVirtual   *SupportVirtual `json:"support_virtual,omitempty" yaml:"support_virtual,omitempty"`
	SupportSharing   bool            `json:"support_sharing" yaml:"support_sharing"`
	Hostname         string          `json:"hostname" yaml:"hostname"`
}

// SupportVirtual reports which kinds of mounts are enabled.
type SupportVirtual struct {
	EnableISOMount    bool `json:"enable_iso_mount" yaml:"enable_iso_mount"`
	EnableRemoteMount bool `json:"enable_remote_mount" yaml:"enable_remote_mount"`
}

// UnmarshalJSON accepts both shapes servers send: newer ones list the
// protocols in support_virtual_protocol and describe mounts in
// support_virtual, older ones send the protocols as a comma separated
// support_virtual string.
func (i *Info) UnmarshalJSON(data []byte) error {
	var raw struct {
		IsManager        bool            `json:"is_manager"`
		VirtualProtocols []string        `json:"support_virtual_protocol"`
		SupportVirtual   json.RawMessage `json:"support_virtual"`
		SupportSharing   bool            `json:"support_sharing"`
		Hostname         string          `json:"hostname"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("parsing file station info: %w", err)
	}

	*i = Info{
		IsManager:        raw.IsManager,
		VirtualProtocols: raw.VirtualProtocols,
		SupportSharing:   raw.SupportSharing,
		Hostname:         raw.Hostname,
	}

	if len(raw.SupportVirtual) == 0 || string(raw.SupportVirtual) == "null" {
		return nil
	}

	var protocols string

	if json.Unmarshal(raw.SupportVirtual, &protocols) == nil {
		i.VirtualProtocols = splitProtocols(protocols)

		return nil
	}

	var support SupportVirtual

	err = json.Unmarshal(raw.SupportVirtual, &support)
	if err != nil {
		return fmt.Errorf("parsing support_virtual: %w", err)
	}

	i.SupportVirtual = &support

	return nil
}

func splitProtocols(value string) []string {
	var protocols []string

	for _, protocol := range strings.Split(value, ",") {
		if protocol = strings.TrimSpace(protocol); protocol != "" {
			protocols = append(protocols, protocol)
		}
	}

	return protocols
}

// Owner is the owner of a file.
type Owner struct {
	User  string `json:"user" yaml:"user"`
	Group string `json:"group" yaml:"group"`
	UID   int    `json:"uid" yaml:"uid"`
	GID   int    `json:"gid" yaml:"gid"`
}

// Time holds Unix timestamps in seconds.
type Time struct {
	Accessed int64 `json:"atime" yaml:"atime"`
	Modified int64 `json:"mtime" yaml:"mtime"`
	Changed  int64 `json:"ctime" yaml:"ctime"`
	Created  int64 `json:"crtime" yaml:"crtime"`
}

// ACL is the Windows ACL privilege of the logged-in user.
type ACL struct {
	Append bool `json:"append" yaml:"append"`
	Delete bool `json:"del" yaml:"del"`
	Exec   bool `json:"exec" yaml:"exec"`
	Read   bool `json:"read" yaml:"read"`
	Write  bool `json:"write" yaml:"write"`
}

// AdvancedRight are the special privileges of a shared folder.
type AdvancedRight struct {
	DisableDownload bool `json:"disable_download" yaml:"disable_download"`
	DisableList     bool `json:"disable_list" yaml:"disable_list"`
	DisableModify   bool `json:"disable_modify" yaml:"disable_modify"`
}

// SharePermission is the permission of a shared folder.
type SharePermission struct {
	// ShareRight is "RW" or "RO".
	ShareRight    string         `json:"share_right" yaml:"share_right"`
	Posix         int            `json:"posix" yaml:"posix"`
	AdvancedRight *AdvancedRight `json:"adv_right,omitempty" yaml:"adv_right,omitempty"`
	ACLEnable     bool           `json:"acl_enable" yaml:"acl_enable"`
	IsACLMode     bool           `json:"is_acl_mode" yaml:"is_acl_mode"`
	ACL           *ACL           `json:"acl,omitempty" yaml:"acl,omitempty"`
}

// VolumeStatus describes the volume a shared folder lives on.
type VolumeStatus struct {
	FreeSpace  int64 `json:"freespace" yaml:"freespace"`
	TotalSpace int64 `json:"totalspace" yaml:"totalspace"`
	ReadOnly   bool  `json:"readonly" yaml:"readonly"`
}

// ShareAdditional holds the additional information requested for a share.
type ShareAdditional struct {
	RealPath       string           `json:"real_path,omitempty" yaml:"real_path,omitempty"`
	Owner          *Owner           `json:"owner,omitempty" yaml:"owner,omitempty"`
	Time           *Time            `json:"time,omitempty" yaml:"time,omitempty"`
	Permission     *SharePermission `json:"perm,omitempty" yaml:"perm,omitempty"`
	MountPointType string           `json:"mount_point_type,omitempty" yaml:"mount_point_type,omitempty"`
	VolumeStatus   *VolumeStatus    `json:"volume_status,omitempty" yaml:"volume_status,omitempty"`
}

// Share is a shared folder.
type Share struct {
	Path       string           `json:"path" yaml:"path"`
	Name       string           `json:"name" yaml:"name"`
	IsDir      bool             `json:"isdir" yaml:"isdir"`
	Additional *ShareAdditional `json:"additional,omitempty" yaml:"additional,omitempty"`
}

// ShareList is a page of shared folders.
type ShareList struct {
	Total  int     `json:"total" yaml:"total"`
	Offset int     `json:"offset" yaml:"offset"`
	Shares []Share `json:"shares" yaml:"shares"`
}

// FilePermission is the permission of a file.
type FilePermission struct {
	Posix     int  `json:"posix" yaml:"posix"`
	IsACLMode bool `json:"is_acl_mode" yaml:"is_acl_mode"`
	ACL       *ACL `json:"acl,omitempty" yaml:"acl,omitempty"`
}

// FileAdditional holds the additional information requested for a file.
type FileAdditional struct {
	RealPath       string          `json:"real_path,omitempty" yaml:"real_path,omitempty"`
	Size           int64           `json:"size,omitempty" yaml:"size,omitempty"`
	Owner          *Owner          `json:"owner,omitempty" yaml:"owner,omitempty"`
	Time           *Time           `json:"time,omitempty" yaml:"time,omitempty"`
	Permission     *FilePermission `json:"perm,omitempty" yaml:"perm,omitempty"`
	MountPointType string          `json:"mount_point_type,omitempty" yaml:"mount_point_type,omitempty"`
	Type           string          `json:"type,omitempty" yaml:"type,omitempty"`
}

// File is a file or folder.
type File struct {
	Path       string          `json:"path" yaml:"path"`
	Name       string          `json:"name" yaml:"name"`
	IsDir      bool            `json:"isdir" yaml:"isdir"`
	Children   *FileList       `json:"children,omitempty" yaml:"children,omitempty"`
	Additional *FileAdditional `json:"additional,omitempty" yaml:"additional,omitempty"`
}

// FileList is a page of files.
type FileList struct {
	Total  int    `json:"total" yaml:"total"`
	Offset int    `json:"offset" yaml:"offset"`
	Files  []File `json:"files" yaml:"files"`
}

// UploadData is returned by an upload. Servers often send no data at all.
type UploadData struct {
	Skipped  bool   `json:"blSkip,omitempty" yaml:"skipped,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	PID      int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Progress int    `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// CreateFolderData lists the created folders.
type CreateFolderData struct {
	Folders []File `json:"folders" yaml:"folders"`
}

// RenameData lists the renamed entries.
type RenameData struct {
	Files []File `json:"files" yaml:"files"`
}

// TaskData identifies a background task.
type TaskData struct {
	TaskID string `json:"taskid" yaml:"taskid"`
}

// CopyMoveStatus is the progress of a copy or move task.
type CopyMoveStatus struct {
	ProcessedSize  int64             `json:"processed_size" yaml:"processed_size"`
	Total          int64             `json:"total" yaml:"total"`
	Path           string            `json:"path" yaml:"path"`
	Finished       bool              `json:"finished" yaml:"finished"`
	Progress       float64           `json:"progress" yaml:"progress"`
	DestFolderPath string            `json:"dest_folder_path" yaml:"dest_folder_path"`
	Errors         []dsm.ErrorDetail `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// DeleteStatus is the progress of a delete task.
type DeleteStatus struct {
	ProcessedNum   int               `json:"processed_num" yaml:"processed_num"`
	Total          int               `json:"total" yaml:"total"`
	Path           string            `json:"path" yaml:"path"`
	ProcessingPath string            `json:"processing_path" yaml:"processing_path"`
	Finished       bool              `json:"finished" yaml:"finished"`
	Progress       float64           `json:"progress" yaml:"progress"`
	Errors         []dsm.ErrorDetail `json:"errors,omitempty" yaml:"errors,omitempty"`
}
