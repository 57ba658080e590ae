package filestation_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(t *testing.T, d dsm.Descriptor, version dsm.Version) map[string]string {
	t.Helper()

	sink := dsm.NewQuerySink()
	enc := dsm.NewEncoder(version, sink)
	d.EncodeParams(enc)
	require.NoError(t, enc.Err())

	values := map[string]string{}
	for _, p := range sink.Params() {
		values[p.Name] = p.Value
	}

	return values
}

func method(t *testing.T, d dsm.Descriptor, version dsm.Version) string {
	t.Helper()

	name, ok := d.MethodName().Resolve(version)
	require.True(t, ok)

	return name
}

func TestGetInfo_MethodByVersion(t *testing.T) {
	t.Parallel()

	req := filestation.GetInfo()
	assert.Equal(t, "getinfo", method(t, req, 1))
	assert.Equal(t, "get", method(t, req, 2))
	assert.Same(t, dsm.FileStation, req.ErrorTaxonomy())
	assert.Empty(t, params(t, req, 2))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestListRequests(t *testing.T) {
	t.Parallel()

	t.Run("list share", func(t *testing.T) {
		t.Parallel()

		req := filestation.ListShare(filestation.ListShareOptions{
			Limit:         5,
			SortBy:        filestation.SortByName,
			SortDirection: filestation.SortDescending,
			OnlyWritable:  true,
			Additional:    filestation.Additionals(filestation.AdditionalVolumeStatus, filestation.AdditionalOwner, filestation.AdditionalVolumeStatus),
		})

		assert.Equal(t, "list_share", method(t, req, 2))
		assert.Equal(t, map[string]string{
			"limit":          "5",
			"sort_by":        "name",
			"sort_direction": "desc",
			"onlywritable":   "true",
			"additional":     "volume_status,owner",
		}, params(t, req, 2))
	})

	t.Run("list omits unset options", func(t *testing.T) {
		t.Parallel()

		req := filestation.List(filestation.ListOptions{FolderPath: "/photo"})
		assert.Equal(t, map[string]string{"folder_path": "/photo"}, params(t, req, 2))
	})

	t.Run("list escapes paths", func(t *testing.T) {
		t.Parallel()

		req := filestation.List(filestation.ListOptions{
			FolderPath: `/a,b`,
			GotoPath:   `/a,b\c`,
			Pattern:    "*.jpg,*.png",
			FileType:   filestation.FileTypeFile,
			Offset:     10,
		})

		assert.Equal(t, map[string]string{
			"folder_path": `/a\,b`,
			"goto_path":   `/a\,b\\c`,
			"pattern":     "*.jpg,*.png",
			"filetype":    "file",
			"offset":      "10",
		}, params(t, req, 2))
	})
}

func TestUpload(t *testing.T) {
	t.Parallel()

	overwrite := true
	modified := time.UnixMilli(1_700_000_000_123)

	req := filestation.Upload(filestation.UploadOptions{
		Path:       "/home",
		Overwrite:  &overwrite,
		ModifiedAt: modified,
		File:       dsm.FileBytes("a.txt", []byte("x")),
	})

	assert.Equal(t, dsm.EncodingMultipart, req.RequestEncoding())
	assert.Same(t, dsm.Upload, req.ErrorTaxonomy())

	v1 := params(t, req, 1)
	assert.Equal(t, "/home", v1["dest_folder_path"])
	assert.NotContains(t, v1, "path")

	v2 := params(t, req, 2)
	assert.Equal(t, "/home", v2["path"])
	assert.NotContains(t, v2, "dest_folder_path")
	assert.Equal(t, "false", v2["create_parents"])
	assert.Equal(t, "true", v2["overwrite"])
	assert.Equal(t, "1700000000123", v2["mtime"])
	assert.NotContains(t, v2, "crtime")
	assert.Equal(t, "a.txt", v2["file"])
}

func TestThumbnailAndDownload(t *testing.T) {
	t.Parallel()

	thumb := filestation.Thumbnail("/photo/a.jpg", filestation.ThumbSmall, filestation.Rotate90)
	assert.Equal(t, map[string]string{"path": "/photo/a.jpg", "size": "small", "rotate": "1"}, params(t, thumb, 2))

	unrotated := filestation.Thumbnail("/photo/a.jpg", filestation.ThumbLarge, filestation.RotateNone)
	assert.NotContains(t, params(t, unrotated, 2), "rotate")

	download := filestation.Download("/home/a.txt", "")
	assert.Equal(t, map[string]string{"path": "/home/a.txt", "mode": "download"}, params(t, download, 1))
}

func TestFolderOperations(t *testing.T) {
	t.Parallel()

	create := filestation.CreateFolder(filestation.CreateFolderOptions{
		Items: []filestation.FolderItem{
			{FolderPath: "/home", Name: "a,b"},
			{FolderPath: "/video", Name: "c"},
		},
		ForceParent: true,
	})
	assert.Same(t, dsm.CreateFolder, create.ErrorTaxonomy())
	assert.Equal(t, map[string]string{
		"folder_path":  "/home,/video",
		"name":         `a\,b,c`,
		"force_parent": "true",
	}, params(t, create, 2))

	rename := filestation.Rename(filestation.RenameOptions{
		Items:        []filestation.RenameItem{{Path: "/home/a", Name: "b"}},
		SearchTaskID: "search-1",
	})
	assert.Same(t, dsm.Rename, rename.ErrorTaxonomy())
	assert.Equal(t, map[string]string{
		"path":          "/home/a",
		"name":          "b",
		"search_taskid": "search-1",
	}, params(t, rename, 2))
}

func TestTaskRequests(t *testing.T) {
	t.Parallel()

	overwrite := false
	start := filestation.CopyMoveStart(filestation.CopyMoveOptions{
		Paths:          []string{"/home/a", "/home/b"},
		DestFolderPath: "/backup",
		Overwrite:      &overwrite,
		RemoveSource:   true,
	})
	assert.Equal(t, "start", method(t, start, 1))
	assert.Same(t, dsm.CopyMove, start.ErrorTaxonomy())
	assert.Equal(t, map[string]string{
		"path":             "/home/a,/home/b",
		"dest_folder_path": "/backup",
		"overwrite":        "false",
		"remove_src":       "true",
	}, params(t, start, 1))

	assert.Equal(t, map[string]string{"taskid": "FileStation_1"}, params(t, filestation.CopyMoveStatusRequest("FileStation_1"), 1))
	assert.Equal(t, "stop", method(t, filestation.CopyMoveStop("FileStation_1"), 1))

	recursive := true
	del := filestation.DeleteStart(filestation.DeleteOptions{Paths: []string{"/tmp/x"}, Recursive: &recursive, AccurateProgress: true})
	assert.Same(t, dsm.Delete, del.ErrorTaxonomy())
	assert.Equal(t, map[string]string{
		"path":              "/tmp/x",
		"accurate_progress": "true",
		"recursive":         "true",
	}, params(t, del, 1))

	assert.Equal(t, "status", method(t, filestation.DeleteStatusRequest("t"), 1))
	assert.Same(t, dsm.Delete, filestation.DeleteStop("t").ErrorTaxonomy())
}
