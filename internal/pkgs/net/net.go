// Package net implements the `net` built-in module: an HTTP GET and a
// WebSocket client, grounded on the teacher's internal/network package
// (http_client.go, websocket.go) wiring github.com/gorilla/websocket, a
// dependency the teacher declares and uses for its own websocket proxy
// tooling. Blocking reads (`net.ws-recv`) are implemented as an ordinary
// synchronous call into gorilla/websocket's ReadMessage — Go's
// growable-stack model means there is no C-stack recursion hazard to
// avoid by routing this through a state-machine opcode pair, unlike the
// teacher's own C-level convention for the same concern.
package net

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"smile/internal/builtin"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

func Install(v *vm.VM, symbols *symbol.Table) map[string]value.Value {
	fns := map[string]func(args []value.Value) (value.Value, error){
		"net.http-get": netHTTPGet,
		"net.ws-dial":  netWSDial,
		"net.ws-send":  netWSSend,
		"net.ws-recv":  netWSRecv,
		"net.ws-close": netWSClose,
	}
	out := make(map[string]value.Value, len(fns))
	for name, fn := range fns {
		builtin.SetupFunction(v, symbols, name, 0, -1, fn)
		val, _ := v.GetGlobal(symbols.GetSymbol(name))
		out[name] = val
	}
	return out
}

func asString(v value.Value) (string, bool) {
	if v.Kind != value.KString {
		return "", false
	}
	return v.ToString(), true
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// net.http-get(url) -> Pair(status, body).
func netHTTPGet(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("net.http-get expects a url")
	}
	url, ok := asString(args[0])
	if !ok {
		return value.Null, fmt.Errorf("net.http-get: url must be a string")
	}
	resp, err := httpClient.Get(url)
	if err != nil {
		return value.Null, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.Null, err
	}
	return value.NewPair(value.Int64(int64(resp.StatusCode)), value.NewString(string(body))), nil
}

// wsConn is the resource behind a `websocket` Handle, guarded by a mutex
// because writes must not interleave (gorilla/websocket requires at most
// one writer at a time).
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

var wsDialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}

// net.ws-dial(url) -> Handle.
func netWSDial(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("net.ws-dial expects a url")
	}
	url, ok := asString(args[0])
	if !ok {
		return value.Null, fmt.Errorf("net.ws-dial: url must be a string")
	}
	conn, _, err := wsDialer.Dial(url, nil)
	if err != nil {
		return value.Null, err
	}
	ws := &wsConn{conn: conn}
	return value.NewHandle("websocket", ws, map[string]func([]value.Value) (value.Value, error){
		"send": func(a []value.Value) (value.Value, error) { return wsSend(ws, a) },
		"recv": func(a []value.Value) (value.Value, error) { return wsRecv(ws) },
	}, conn.Close), nil
}

func wsHandle(v value.Value) (*wsConn, error) {
	if v.Kind != value.KHandle {
		return nil, fmt.Errorf("expected a websocket handle")
	}
	h, ok := v.Obj.(*value.Handle)
	if !ok {
		return nil, fmt.Errorf("expected a websocket handle")
	}
	ws, ok := h.Resource.(*wsConn)
	if !ok {
		return nil, fmt.Errorf("handle is not a websocket connection")
	}
	return ws, nil
}

func wsSend(ws *wsConn, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("net.ws-send expects a message")
	}
	msg, ok := asString(args[0])
	if !ok {
		return value.Null, fmt.Errorf("net.ws-send: message must be a string")
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return value.Null, ws.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func wsRecv(ws *wsConn) (value.Value, error) {
	_, data, err := ws.conn.ReadMessage()
	if err != nil {
		return value.Null, err
	}
	return value.NewString(string(data)), nil
}

// net.ws-send(handle, message) -> Null.
func netWSSend(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, fmt.Errorf("net.ws-send expects (handle, message)")
	}
	ws, err := wsHandle(args[0])
	if err != nil {
		return value.Null, err
	}
	return wsSend(ws, args[1:])
}

// net.ws-recv(handle) -> String. Blocks until a message arrives.
func netWSRecv(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("net.ws-recv expects a handle")
	}
	ws, err := wsHandle(args[0])
	if err != nil {
		return value.Null, err
	}
	return wsRecv(ws)
}

// net.ws-close(handle) -> Null.
func netWSClose(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("net.ws-close expects a handle")
	}
	if args[0].Kind != value.KHandle {
		return value.Null, fmt.Errorf("net.ws-close: not a handle")
	}
	h := args[0].Obj.(*value.Handle)
	return value.Null, h.Close()
}
