package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/projectsvc"
	"github.com/kristianernst/fast-slides/internal/testutil"
)

type nopShell struct{}

func (nopShell) Reveal(string) error { return nil }

func (nopShell) Archive(string, string) error { return nil }

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := projectsvc.New(testutil.TestHome(t),
		projectsvc.WithShell(nopShell{}),
		projectsvc.WithJournal(testutil.TestDB(t), 0),
	)
	return New(svc), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "open_project":
		result, err = srv.openProject(ctx, req)
	case "save_project":
		result, err = srv.saveProject(ctx, req)
	case "create_project":
		result, err = srv.createProject(ctx, req)
	case "validate_project":
		result, err = srv.validateProject(ctx, req)
	case "audit_project":
		result, err = srv.auditProject(ctx, req)
	case "validation_history":
		result, err = srv.validationHistory(ctx, req)
	case "preview_url":
		result, err = srv.previewURL(ctx, req)
	case "add_asset":
		result, err = srv.addAsset(ctx, req)
	case "get_deck_contract":
		result, err = srv.getDeckContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateOpenAndValidate(t *testing.T) {
	srv, root := testServer(t)

	r := callTool(t, srv, "create_project", map[string]interface{}{
		"root":  root,
		"name":  "launch",
		"title": "Launch Plan",
	})
	if r.IsError {
		t.Fatalf("create: %s", resultText(r))
	}
	var created models.ProjectDetail
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatal(err)
	}
	if created.SlideCount != 3 {
		t.Errorf("slide count = %d", created.SlideCount)
	}

	r = callTool(t, srv, "validate_project", map[string]interface{}{"path": created.Path})
	var report models.ValidationReport
	if err := json.Unmarshal([]byte(resultText(r)), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors = %v", report.Errors)
	}

	r = callTool(t, srv, "list_projects", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"name": "launch"`) {
		t.Errorf("list = %s", resultText(r))
	}

	r = callTool(t, srv, "validation_history", map[string]interface{}{"path": created.Path, "limit": float64(5)})
	var runs []models.ValidationRun
	if err := json.Unmarshal([]byte(resultText(r)), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}
}

func TestCreateProject_InvalidName(t *testing.T) {
	srv, root := testServer(t)
	r := callTool(t, srv, "create_project", map[string]interface{}{"root": root, "name": "bad name"})
	if !r.IsError {
		t.Error("expected error for invalid name")
	}
}

func TestSaveProject_Conflict(t *testing.T) {
	srv, root := testServer(t)
	dir := testutil.Project(t, root, "deck", testutil.Deck("deck", "Deck", "# One"))

	r := callTool(t, srv, "open_project", map[string]interface{}{"path": dir})
	var opened models.ProjectDetail
	_ = json.Unmarshal([]byte(resultText(r)), &opened)

	next := testutil.Deck("deck", "Deck", "# One", "# Two")
	r = callTool(t, srv, "save_project", map[string]interface{}{"path": dir, "content": next, "checksum": opened.Checksum})
	if r.IsError {
		t.Fatalf("save: %s", resultText(r))
	}
	r = callTool(t, srv, "save_project", map[string]interface{}{"path": dir, "content": next, "checksum": opened.Checksum})
	if !r.IsError || !strings.Contains(resultText(r), "changed since it was opened") {
		t.Errorf("stale save = %s", resultText(r))
	}
}

func TestOpenProjectMissing(t *testing.T) {
	srv, root := testServer(t)
	r := callTool(t, srv, "open_project", map[string]interface{}{"path": filepath.Join(root, "nope")})
	if !r.IsError {
		t.Error("expected error for missing project")
	}
	r = callTool(t, srv, "open_project", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing path argument")
	}
}

func TestAuditProject(t *testing.T) {
	srv, root := testServer(t)
	dir := testutil.Project(t, root, "deck", testutil.Deck("deck", "Deck", "![x](images/x.png)"))
	testutil.WriteFile(t, dir, "data/big.csv", strings.Repeat("x", 100))

	r := callTool(t, srv, "audit_project", map[string]interface{}{"path": dir, "top": float64(1)})
	var report models.AuditReport
	if err := json.Unmarshal([]byte(resultText(r)), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.MissingAssets) != 1 || len(report.LargestFiles) != 1 || report.LargestFiles[0].Path != "data/big.csv" {
		t.Errorf("report = %+v", report)
	}
}

func TestPreviewURL(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "preview_url", map[string]interface{}{"path": "/decks/q3"})
	if got := resultText(r); got != projectsvc.DefaultPreviewURL+"/?deckPath=%2Fdecks%2Fq3" {
		t.Errorf("url = %q", got)
	}
}

func TestAddAsset_DataURI(t *testing.T) {
	srv, root := testServer(t)
	dir := testutil.Project(t, root, "deck", testutil.Deck("deck", "Deck", "# One"))
	svg := "<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>"
	uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	r := callTool(t, srv, "add_asset", map[string]interface{}{
		"project":  dir,
		"url":      uri,
		"filename": "logo.svg",
	})
	if r.IsError {
		t.Fatalf("add_asset: %s", resultText(r))
	}
	var res addAssetResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.SavedPath != "images/logo.svg" || res.Folder != "images" || res.Snippet != "![logo](images/logo.svg)" {
		t.Errorf("result = %+v", res)
	}
	if data, err := os.ReadFile(filepath.Join(dir, "images", "logo.svg")); err != nil || string(data) != svg {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestAddAsset_FolderFromContentType(t *testing.T) {
	srv, root := testServer(t)
	dir := testutil.Project(t, root, "deck", testutil.Deck("deck", "Deck", "# One"))
	csv := "quarter,revenue\nQ3,12\n"

	r := callTool(t, srv, "add_asset", map[string]interface{}{
		"project":  dir,
		"url":      "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte(csv)),
		"filename": "Revenue Q3.CSV",
	})
	if r.IsError {
		t.Fatalf("add_asset: %s", resultText(r))
	}
	var res addAssetResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.SavedPath != "data/Revenue-Q3.csv" || res.ContentType != "text/csv" || res.Snippet != "[Revenue-Q3.csv](data/Revenue-Q3.csv)" {
		t.Errorf("result = %+v", res)
	}
	if data, err := os.ReadFile(filepath.Join(dir, "data", "Revenue-Q3.csv")); err != nil || string(data) != csv {
		t.Errorf("file = %q, %v", data, err)
	}

	// A nameless payload gets a generated name with the type's extension.
	r = callTool(t, srv, "add_asset", map[string]interface{}{
		"project": dir,
		"url":     "data:text/plain;base64,aGk=",
	})
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if r.IsError || !strings.HasPrefix(res.SavedPath, "data/asset-") || !strings.HasSuffix(res.SavedPath, ".txt") {
		t.Errorf("generated = %+v (%s)", res, resultText(r))
	}
}

func TestSlideSnippet(t *testing.T) {
	cases := map[string]string{
		"images/chart.png": "![chart](images/chart.png)",
		"media/intro.mp4":  `<video src="/media/intro.mp4" controls />`,
		"media/theme.mp3":  `<audio src="/media/theme.mp3" controls />`,
		"data/report.pdf":  "[report.pdf](data/report.pdf)",
	}
	for rel, want := range cases {
		if got := slideSnippet(rel); got != want {
			t.Errorf("slideSnippet(%q) = %q, want %q", rel, got, want)
		}
	}
}

func TestCheckHost(t *testing.T) {
	for _, host := range []string{"127.0.0.1", "::1", "169.254.169.254", "0.0.0.0", "metadata.google.internal"} {
		if err := checkHost(host); err == nil {
			t.Errorf("%s should be blocked", host)
		}
	}
	if err := checkHost("203.0.113.7"); err != nil {
		t.Errorf("public address blocked: %v", err)
	}
}

func TestAddAsset_Rejected(t *testing.T) {
	srv, root := testServer(t)
	dir := testutil.Project(t, root, "deck", testutil.Deck("deck", "Deck", "# One"))
	notPNG := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))

	cases := []map[string]interface{}{
		{"project": dir, "url": notPNG, "filename": "a.png"},
		{"project": dir, "url": notPNG, "filename": "a.exe"},
		{"project": dir, "url": "ftp://example.com/a.png"},
		{"project": dir, "url": "http://127.0.0.1/a.png"},
		{"project": dir, "url": "data:application/x-msdownload;base64,aGk="},
		{"project": dir, "url": "data:text/plain;base64,aGk=", "folder": "images"},
		{"project": dir, "url": "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte("{oops"))},
		{"project": dir, "url": notPNG, "filename": "a.png", "folder": "secrets"},
	}
	for _, args := range cases {
		if r := callTool(t, srv, "add_asset", args); !r.IsError {
			t.Errorf("%v: expected error, got %s", args, resultText(r))
		}
	}
}

func TestDeckContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_deck_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), `<section className="slide">`) {
		t.Error("contract should describe slide sections")
	}
	contents, err := srv.readDeckFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}
