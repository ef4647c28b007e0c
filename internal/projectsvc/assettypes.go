package projectsvc

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/kristianernst/fast-slides/internal/sandbox"
)

// assetType is one file kind a deck may carry.
type assetType struct {
	ext    string
	mime   string
	folder string
}

// assetTypes is the single table behind content types, upload allow-lists
// and the reverse lookup from content type to extension. The first entry for
// a content type is its preferred extension.
var assetTypes = []assetType{
	{".png", "image/png", "images"},
	{".jpg", "image/jpeg", "images"},
	{".jpeg", "image/jpeg", "images"},
	{".gif", "image/gif", "images"},
	{".svg", "image/svg+xml", "images"},
	{".webp", "image/webp", "images"},
	{".bmp", "image/bmp", "images"},
	{".avif", "image/avif", "images"},
	{".mp4", "video/mp4", "media"},
	{".webm", "video/webm", "media"},
	{".mov", "video/quicktime", "media"},
	{".mp3", "audio/mpeg", "media"},
	{".wav", "audio/wav", "media"},
	{".ogg", "audio/ogg", "media"},
	{".csv", "text/csv", "data"},
	{".json", "application/json", "data"},
	{".txt", "text/plain", "data"},
	{".pdf", "application/pdf", "data"},
}

// catchAllFolder accepts every known asset type.
const catchAllFolder = "assets"

func lookupExt(ext string) (assetType, bool) {
	ext = strings.ToLower(ext)
	for _, t := range assetTypes {
		if t.ext == ext {
			return t, true
		}
	}
	return assetType{}, false
}

// MimeType returns the content type for an asset path by extension.
func MimeType(path string) string {
	if t, ok := lookupExt(filepath.Ext(path)); ok {
		return t.mime
	}
	return "application/octet-stream"
}

// FolderExtensions lists, in table order, the extensions an asset folder
// accepts. Unknown folders accept nothing.
func FolderExtensions(folder string) []string {
	if !slices.Contains(sandbox.AllowedRootSegments, folder) {
		return nil
	}
	var exts []string
	for _, t := range assetTypes {
		if folder == catchAllFolder || t.folder == folder {
			exts = append(exts, t.ext)
		}
	}
	return exts
}

// FolderAccepts reports whether name's extension may be stored in folder.
func FolderAccepts(folder, name string) bool {
	return slices.Contains(FolderExtensions(folder), strings.ToLower(filepath.Ext(name)))
}

// ExtensionFor returns the preferred extension for a content type, ignoring
// parameters such as charset, or "" when the type is not a deck asset.
func ExtensionFor(contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range assetTypes {
		if t.mime == mime {
			return t.ext
		}
	}
	return ""
}

// FolderFor returns the asset folder that normally holds files of the given
// content type, falling back to DefaultAssetFolder.
func FolderFor(contentType string) string {
	if t, ok := lookupExt(ExtensionFor(contentType)); ok {
		return t.folder
	}
	return DefaultAssetFolder
}
