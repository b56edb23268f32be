// Command htmlcorestream is a demo integrator for the streaming parse
// pipeline: it accepts an HTML document pushed over a websocket in
// whatever frame sizes the client chooses, feeds every frame through
// the pipeline as a byte chunk, and answers with the document dump and
// parse-error counts once the stream ends.
//
// Protocol: each binary/text frame is one chunk. A close frame (or an
// empty frame) ends the document; the server replies with one text
// frame containing the serialized tree.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/websocket"

	"github.com/riverrun/htmlcore/atom"
	"github.com/riverrun/htmlcore/dom"
	"github.com/riverrun/htmlcore/html5/tree"
	"github.com/riverrun/htmlcore/htmlcore"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type server struct {
	atoms  *atom.Table
	logger *slog.Logger
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	store := dom.NewStore()
	p := htmlcore.NewPipeline(s.atoms, store, htmlcore.Options{
		Builder: tree.Options{CoalesceText: true},
	})

	chunks := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil || len(data) == 0 {
			break
		}
		chunks++
		if err := p.PushChunk(data); err != nil {
			s.logger.Error("pipeline rejected chunk", "chunk", chunks, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte("error: "+err.Error()))
			return
		}
	}

	if err := p.Finish(); err != nil {
		s.logger.Error("pipeline finish failed", "error", err)
		_ = conn.WriteMessage(websocket.TextMessage, []byte("error: "+err.Error()))
		return
	}

	node, err := p.Document()
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("error: "+err.Error()))
		return
	}

	dump := dom.Snapshot(node, dom.SnapshotOptions{IncludeComments: true})
	summary := fmt.Sprintf("%s\nchunks=%d version=%d quirks=%v tokenizer-errors=%d builder-errors=%d\n",
		dump, chunks, p.Version(), p.Quirks(),
		len(p.TokenizerErrors().Entries()), len(p.BuilderErrors().Entries()))

	s.logger.Info("document parsed",
		"chunks", chunks,
		"version", p.Version(),
		"quirks", p.Quirks())

	_ = conn.WriteMessage(websocket.TextMessage, []byte(summary))
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	s := &server{
		atoms:  atom.NewTable(),
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/parse", s)

	logger.Info("starting htmlcorestream", "address", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("HTTP server error", "error", err)
	}
}
