package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kristianernst/fast-slides/internal/projectsvc"
)

const (
	maxAssetBytes = 10 << 20
	maxRedirects  = 5
)

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// blockedHosts are metadata endpoints that resolve to link-local addresses
// on some clouds and to ordinary ones on others.
var blockedHosts = []string{"metadata.google.internal", "metadata.azure.internal"}

// sniffedTypes are the content types http.DetectContentType recognizes
// reliably; assets of these types must start with the matching signature.
var sniffedTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
}

// assetSource is a downloaded or decoded asset before it is stored.
type assetSource struct {
	data        []byte
	contentType string
	name        string
}

type addAssetResult struct {
	SavedPath   string `json:"savedPath"`
	Folder      string `json:"folder"`
	ContentType string `json:"contentType"`
	// Snippet is ready to paste into a slide: an image, a media element or
	// a plain link depending on the folder.
	Snippet string `json:"snippet"`
}

func (s *Server) addAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var src *assetSource
	if strings.HasPrefix(rawURL, "data:") {
		src, err = decodeDataURI(rawURL)
	} else {
		src, err = download(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	folder := strings.TrimSpace(req.GetString("folder", ""))
	if folder == "" {
		folder = projectsvc.FolderFor(src.contentType)
	}
	name := assetName(req.GetString("filename", ""), src)

	if !projectsvc.FolderAccepts(folder, name) {
		exts := projectsvc.FolderExtensions(folder)
		if exts == nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown asset folder %q", folder)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("%s cannot hold %s (allowed: %s)",
			folder, path.Ext(name), strings.Join(exts, ", "))), nil
	}
	if err := checkSignature(src.data, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rel, err := s.svc.AddAsset(ctx, project, folder, name, src.data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save asset: %v", err)), nil
	}

	out, _ := json.Marshal(addAssetResult{
		SavedPath:   rel,
		Folder:      folder,
		ContentType: projectsvc.MimeType(rel),
		Snippet:     slideSnippet(rel),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:<type>;base64,<payload> URI.
func decodeDataURI(uri string) (*assetSource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("invalid data URI: missing comma separator")
	}
	params := strings.Split(meta, ";")
	if !containsFold(params[1:], "base64") {
		return nil, errors.New("only base64 data URIs are supported")
	}
	contentType := strings.ToLower(params[0])
	if projectsvc.ExtensionFor(contentType) == "" {
		return nil, fmt.Errorf("unsupported content type in data URI: %s", contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset too large: %d bytes (max %d)", len(data), maxAssetBytes)
	}
	return &assetSource{data: data, contentType: contentType}, nil
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

// download fetches an http(s) asset, refusing hosts on this machine or the
// cloud metadata service at every redirect hop.
func download(ctx context.Context, rawURL string) (*assetSource, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (max %d)", maxRedirects)
			}
			return checkHost(req.URL.Hostname())
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset too large: exceeds %d bytes", maxAssetBytes)
	}

	return &assetSource{
		data:        data,
		contentType: strings.ToLower(strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])),
		name:        path.Base(resp.Request.URL.Path),
	}, nil
}

// checkHost rejects loopback, link-local and unspecified addresses. Names
// that do not resolve are left to the HTTP client to report.
func checkHost(host string) error {
	for _, blocked := range blockedHosts {
		if strings.EqualFold(host, blocked) {
			return fmt.Errorf("blocked host: %s", host)
		}
	}
	ips := []net.IP{net.ParseIP(host)}
	if ips[0] == nil {
		resolved, err := net.LookupIP(host)
		if err != nil {
			return nil //nolint:nilerr // the HTTP client reports DNS failures
		}
		ips = resolved
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("blocked host: %s resolves to %s", host, ip)
		}
	}
	return nil
}

// assetName picks the stored file name: the caller's choice, else the
// URL's last segment, else a generated one. The extension follows the
// content type when the chosen name has none.
func assetName(requested string, src *assetSource) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = src.name
	}
	name = unsafeNameRe.ReplaceAllString(path.Base(strings.ReplaceAll(name, `\`, "/")), "-")
	name = strings.TrimLeft(name, ".-")
	if name == "" {
		name = "asset-" + uuid.NewString()[:8]
	}
	ext := path.Ext(name)
	if ext == "" {
		name += projectsvc.ExtensionFor(src.contentType)
	} else {
		name = strings.TrimSuffix(name, ext) + strings.ToLower(ext)
	}
	return name
}

// checkSignature verifies the payload looks like the file kind its name
// claims.
func checkSignature(data []byte, name string) error {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case ext == ".svg":
		head := data[:min(len(data), 1024)]
		if !bytes.Contains(head, []byte("<svg")) {
			return errors.New("content does not look like SVG (no <svg tag)")
		}
	case projectsvc.MimeType(name) == "text/csv" || projectsvc.MimeType(name) == "text/plain":
		if !utf8.Valid(data) {
			return fmt.Errorf("%s must be UTF-8 text", ext)
		}
	case ext == ".json":
		if !json.Valid(data) {
			return errors.New("content is not valid JSON")
		}
	default:
		want, ok := sniffedTypes[ext]
		if !ok {
			return nil
		}
		if got := strings.Split(http.DetectContentType(data), ";")[0]; got != want {
			return fmt.Errorf("content does not match %s (detected %s)", ext, got)
		}
	}
	return nil
}

// slideSnippet renders the reference an author pastes into a slide.
func slideSnippet(rel string) string {
	mime := projectsvc.MimeType(rel)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return fmt.Sprintf("![%s](%s)", strings.TrimSuffix(path.Base(rel), path.Ext(rel)), rel)
	case strings.HasPrefix(mime, "video/"):
		return fmt.Sprintf(`<video src="/%s" controls />`, rel)
	case strings.HasPrefix(mime, "audio/"):
		return fmt.Sprintf(`<audio src="/%s" controls />`, rel)
	default:
		return fmt.Sprintf("[%s](%s)", path.Base(rel), rel)
	}
}
