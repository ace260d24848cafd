// Package graph serves live syntax trees of open documents to a browser
// over a websocket.
package graph

import (
	"embed"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
	"github.com/gorilla/websocket"
)

// Node is the JSON form of a syntax node.
type Node struct {
	Type     string    `json:"type"`
	Field    string    `json:"field,omitempty"`
	Named    bool      `json:"named"`
	Error    bool      `json:"error,omitempty"`
	Missing  bool      `json:"missing,omitempty"`
	Start    [2]uint32 `json:"start"`
	End      [2]uint32 `json:"end"`
	Text     string    `json:"text,omitempty"`
	Children []*Node   `json:"children,omitempty"`
}

// Message is sent over the websocket to update clients.
type Message struct {
	Op   string   `json:"op"` // "init", "update", "delete"
	URI  string   `json:"uri,omitempty"`
	Tree *Node    `json:"tree,omitempty"`
	URIs []string `json:"uris,omitempty"` // for "init"
}

// FromTree converts a syntax tree into its JSON form. Only leaves carry
// their text.
func FromTree(tree *syntax.Tree) *Node {
	return fromNode(tree.Root(), syntax.FieldNone)
}

func fromNode(n syntax.Node, field syntax.Field) *Node {
	start, end := n.StartPoint(), n.EndPoint()
	out := &Node{
		Type:    n.Type(),
		Field:   field.String(),
		Named:   n.IsNamed(),
		Error:   n.IsError(),
		Missing: n.IsMissing(),
		Start:   [2]uint32{start.Row, start.Column},
		End:     [2]uint32{end.Row, end.Column},
	}
	if n.ChildCount() == 0 {
		out.Text = n.Text()
	}
	for i := 0; i < n.ChildCount(); i++ {
		out.Children = append(out.Children, fromNode(n.Child(i), n.FieldOfChild(i)))
	}
	return out
}

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Viewer holds the latest tree of every published document and the
// connected clients.
type Viewer struct {
	treesMu sync.Mutex
	trees   map[string]*Node

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	listener net.Listener
}

// NewViewer creates a viewer that is not yet serving.
func NewViewer() *Viewer {
	return &Viewer{
		trees:   make(map[string]*Node),
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the HTTP handler serving the page and the websocket.
func (v *Viewer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/ws", v.handleWS)
	return mux
}

// Serve starts the HTTP and WebSocket server on the given address (e.g. ":8080").
// It returns the URI where the trees can be viewed.
func (v *Viewer) Serve(addr string) (string, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	v.listener = l

	go func() {
		if err := http.Serve(l, v.Handler()); err != nil {
			log.Printf("Tree viewer error: %v", err)
		}
	}()

	return "http://" + l.Addr().String() + "/static/", nil
}

// Close stops serving and disconnects every client.
func (v *Viewer) Close() error {
	v.clientsMu.Lock()
	for conn := range v.clients {
		conn.Close()
		delete(v.clients, conn)
	}
	v.clientsMu.Unlock()
	if v.listener == nil {
		return nil
	}
	return v.listener.Close()
}

// Publish records the tree of uri and broadcasts it.
func (v *Viewer) Publish(uri string, tree *syntax.Tree) error {
	node := FromTree(tree)
	v.treesMu.Lock()
	v.trees[uri] = node
	v.treesMu.Unlock()
	return v.broadcast(Message{Op: "update", URI: uri, Tree: node})
}

// Forget drops uri and tells clients.
func (v *Viewer) Forget(uri string) error {
	v.treesMu.Lock()
	_, ok := v.trees[uri]
	delete(v.trees, uri)
	v.treesMu.Unlock()
	if !ok {
		return nil
	}
	return v.broadcast(Message{Op: "delete", URI: uri})
}

// URIs returns the published documents in sorted order.
func (v *Viewer) URIs() []string {
	v.treesMu.Lock()
	defer v.treesMu.Unlock()
	uris := make([]string, 0, len(v.trees))
	for uri := range v.trees {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// broadcast marshals and sends a message to all clients.
func (v *Viewer) broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	v.clientsMu.Lock()
	defer v.clientsMu.Unlock()
	for conn := range v.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Broadcast error: %v", err)
			conn.Close()
			delete(v.clients, conn)
		}
	}
	return nil
}

// handleWS upgrades HTTP connections and sends every known tree.
func (v *Viewer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade error: %v", err)
		return
	}

	// Register under the lock so no broadcast interleaves with the
	// initial state.
	v.clientsMu.Lock()
	err = v.sendInitial(conn)
	if err == nil {
		v.clients[conn] = true
	}
	v.clientsMu.Unlock()
	if err != nil {
		log.Printf("Init error: %v", err)
		conn.Close()
		return
	}
	defer func() {
		v.clientsMu.Lock()
		delete(v.clients, conn)
		v.clientsMu.Unlock()
		conn.Close()
	}()

	// keep connection open
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
}

func (v *Viewer) sendInitial(conn *websocket.Conn) error {
	uris := v.URIs()
	if err := conn.WriteJSON(Message{Op: "init", URIs: uris}); err != nil {
		return err
	}
	for _, uri := range uris {
		v.treesMu.Lock()
		node := v.trees[uri]
		v.treesMu.Unlock()
		if node == nil {
			continue
		}
		if err := conn.WriteJSON(Message{Op: "update", URI: uri, Tree: node}); err != nil {
			return err
		}
	}
	return nil
}
