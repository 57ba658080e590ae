package dsm

// Common error codes shared by every API.
const (
	CodeUnknown            = 100
	CodeMissingParameter   = 101
	CodeAPINotFound        = 102
	CodeMethodNotFound     = 103
	CodeVersionUnsupported = 104
	CodePermissionDenied   = 105
	CodeSessionTimeout     = 106
	CodeSessionInterrupted = 107
)

// Common is the root taxonomy every chain ends in.
var Common = NewTaxonomy("Common", nil, map[int]string{
	CodeUnknown:            "Unknown error",
	CodeMissingParameter:   "No parameter of API, method or version",
	CodeAPINotFound:        "The requested API does not exist",
	CodeMethodNotFound:     "The requested method does not exist",
	CodeVersionUnsupported: "The requested version does not support the functionality",
	CodePermissionDenied:   "The logged in session does not have permission",
	CodeSessionTimeout:     "Session timeout",
	CodeSessionInterrupted: "Session interrupted by duplicate login",
})

// Auth covers SYNO.API.Auth.
var Auth = NewTaxonomy("Auth", Common, map[int]string{
	400: "No such account or incorrect password",
	401: "Account disabled",
	402: "Permission denied",
	403: "2-step verification code required",
	404: "Failed to authenticate 2-step verification code",
})

// FileStation covers codes shared by every SYNO.FileStation API.
var FileStation = NewTaxonomy("FileStation", Common, map[int]string{
	400: "Invalid parameter of file operation",
	401: "Unknown error of file operation",
	402: "System is too busy",
	403: "Invalid user does this file operation",
	404: "Invalid group does this file operation",
	405: "Invalid user and group does this file operation",
	406: "Can't get user/group information from the account server",
	407: "Operation not permitted",
	408: "No such file or directory",
	409: "Non-supported file system",
	410: "Failed to connect internet-based file system (ex: CIFS)",
	411: "Read-only file system",
	412: "Filename too long in the non-encrypted file system",
	413: "Filename too long in the encrypted file system",
	414: "File already exists",
	415: "Disk quota exceeded",
	416: "No space left on device",
	417: "Input/output error",
	418: "Illegal name or path",
	419: "Illegal file name",
	420: "Illegal file name on FAT file system",
	421: "Device or resource busy",
	599: "No such task of the file operation",
})

// Favorite covers SYNO.FileStation.Favorite.
var Favorite = NewTaxonomy("Favorite", FileStation, map[int]string{
	800: "A folder path of favorite folder is already added to user's favorites",
	801: "A name of favorite folder conflicts with an existing folder path in the user's favorites",
	802: "There are too many favorites to be added",
})

// CopyMove covers SYNO.FileStation.CopyMove.
var CopyMove = NewTaxonomy("CopyMove", FileStation, map[int]string{
	1000: "Failed to copy files/folders",
	1001: "Failed to move files/folders",
	1002: "An error occurred at the destination",
	1003: "Cannot overwrite or skip the existing file because no overwrite parameter is given",
	1004: "File cannot overwrite a folder with the same name, or folder cannot overwrite a file with the same name",
	1006: "Cannot copy/move file/folder with special characters to a FAT32 file system",
	1007: "Cannot copy/move a file bigger than 4G to a FAT32 file system",
})

// Delete covers SYNO.FileStation.Delete.
var Delete = NewTaxonomy("Delete", FileStation, map[int]string{
	900: "Failed to delete file(s)/folder(s)",
})

// CreateFolder covers SYNO.FileStation.CreateFolder.
var CreateFolder = NewTaxonomy("CreateFolder", FileStation, map[int]string{
	1100: "Failed to create a folder",
	1101: "The number of folders to the parent folder would exceed the system limitation",
})

// Rename covers SYNO.FileStation.Rename.
var Rename = NewTaxonomy("Rename", FileStation, map[int]string{
	1200: "Failed to rename it",
})

// Compress covers SYNO.FileStation.Compress.
var Compress = NewTaxonomy("Compress", FileStation, map[int]string{
	1300: "Failed to compress files/folders",
	1301: "Cannot create the archive because the given archive name is too long",
})

// Extract covers SYNO.FileStation.Extract.
var Extract = NewTaxonomy("Extract", FileStation, map[int]string{
	1400: "Failed to extract files",
	1401: "Cannot open the file as archive",
	1402: "Failed to read archive data",
	1403: "Wrong password",
	1404: "Failed to get the file and dir list in an archive",
	1405: "Failed to find the item ID in an archive file",
})

// Upload covers SYNO.FileStation.Upload.
var Upload = NewTaxonomy("Upload", FileStation, map[int]string{
	1800: "There is no Content-Length information in the HTTP header or the received size doesn't match it",
	1801: "Wait too long, no data can be received from client",
	1802: "No filename information in the last part of file content",
	1803: "Upload connection is cancelled",
	1804: "Failed to upload too big file to FAT file system",
	1805: "Can't overwrite or skip the existing file, if no overwrite parameter is given",
})

// Sharing covers SYNO.FileStation.Sharing.
var Sharing = NewTaxonomy("Sharing", FileStation, map[int]string{
	2000: "Sharing link does not exist",
	2001: "Cannot generate sharing link because too many sharing links exist",
	2002: "Failed to access sharing links",
})
