package lsp

import (
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sigil/internal/parser"
)

// Handler implements the LSP server handlers for rule files: it keeps the
// latest text per open document and republishes diagnostics on every change.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
	}
}

// Initialize advertises the server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("Sigil LSP initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("Sigil LSP shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	h.mu.Lock()
	h.content[uri] = params.TextDocument.Text
	h.mu.Unlock()

	h.publishDiagnostics(ctx, uri)
	return nil
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			h.mu.Lock()
			h.content[uri] = whole.Text
			h.mu.Unlock()
		}
	}

	h.publishDiagnostics(ctx, uri)
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	delete(h.content, params.TextDocument.URI)
	h.mu.Unlock()
	return nil
}

func (h *Handler) publishDiagnostics(ctx *glsp.Context, uri string) {
	h.mu.RLock()
	source := h.content[uri]
	h.mu.RUnlock()

	path := uriToPath(uri)
	diagnostics := CollectDiagnostics(path, source)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// CollectDiagnostics parses the document and reports syntax errors plus
// duplicate rule names within one system path.
func CollectDiagnostics(path, source string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	rules, err := parser.ParseSource(path, source)
	if err != nil {
		diagnostics = append(diagnostics, convertParseError(err))
		return diagnostics
	}

	seen := make(map[string]bool)
	for _, rule := range rules {
		key := rule.SystemName + ":" + rule.Name
		if seen[key] {
			diagnostics = append(diagnostics, duplicateRuleDiagnostic(rule.Pos.Line, rule.Pos.Column, key))
		}
		seen[key] = true
	}
	return diagnostics
}

func uriToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}
	path := parsed.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
	}
	return filepath.FromSlash(path)
}

func ptrBool(v bool) *bool { return &v }

func ptrSyncKind(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
