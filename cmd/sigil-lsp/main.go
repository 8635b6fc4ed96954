// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"sigil/internal/lsp"
)

const lsName = "sigil"

var handler protocol.Handler

func main() {
	commonlog.Configure(1, nil)

	sigilHandler := lsp.NewHandler()

	handler = protocol.Handler{
		Initialize:            sigilHandler.Initialize,
		Initialized:           sigilHandler.Initialized,
		Shutdown:              sigilHandler.Shutdown,
		SetTrace:              sigilHandler.SetTrace,
		TextDocumentDidOpen:   sigilHandler.TextDocumentDidOpen,
		TextDocumentDidChange: sigilHandler.TextDocumentDidChange,
		TextDocumentDidClose:  sigilHandler.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting Sigil LSP server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting Sigil LSP server:", err)
		os.Exit(1)
	}
}
