package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/server"
	"github.com/ShayCichocki/podium/internal/tui"
)

var (
	watchServer   string
	watchTopic    string
	watchProStyle string
	watchConStyle string
	watchPlain    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [debate-id]",
	Short: "Follow a debate on a running server",
	Long: `Connect to a podium server and follow a debate.

With a debate id, starts that debate by opening its websocket. Without
one, creates a new debate on the server from --topic, --pro and --con
first. Votes cast in the viewer are sent back over the websocket.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchServer, "server", "http://localhost:8000", "Server base URL")
	watchCmd.Flags().StringVar(&watchTopic, "topic", tui.DefaultTopic, "Topic for a new debate")
	watchCmd.Flags().StringVar(&watchProStyle, "pro", "", "PRO debater style for a new debate")
	watchCmd.Flags().StringVar(&watchConStyle, "con", "", "CON debater style for a new debate")
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "Print the debate as text instead of the full-screen viewer")
}

func runWatch(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) > 0 {
		id = args[0]
	} else {
		created, err := createRemoteDebate(watchServer, server.CreateDebateRequest{
			Topic:    watchTopic,
			ProStyle: optionalStyle(watchProStyle),
			ConStyle: optionalStyle(watchConStyle),
		})
		if err != nil {
			return err
		}
		id = created.DebateID
		fmt.Printf("Created debate %s (%s vs %s)\n", id, created.ProStyle, created.ConStyle)
	}

	target, err := websocketURL(watchServer, id)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", target, err)
	}
	rc := newRemoteConn(conn)
	defer rc.Close()

	events := rc.Events()
	if watchPlain {
		p := newPlainPrinter(os.Stdout)
		for ev := range events {
			p.Print(ev)
			if _, ok := ev.Payload.(debate.VoteRequired); ok {
				go func() {
					line, err := readLine(os.Stdin)
					if err != nil {
						return
					}
					v, _ := debate.ParseVote(line)
					rc.Vote(v)
				}()
			}
		}
		return nil
	}

	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)
	return tui.Run(tui.NewDebateView(events, rc.Vote))
}

// remoteConn adapts a debate websocket to an event channel.
type remoteConn struct {
	conn   *websocket.Conn
	events chan debate.Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newRemoteConn(conn *websocket.Conn) *remoteConn {
	rc := &remoteConn{
		conn:   conn,
		events: make(chan debate.Event, 64),
		done:   make(chan struct{}),
	}
	go rc.readLoop()
	return rc
}

func (rc *remoteConn) readLoop() {
	defer close(rc.events)
	for {
		var ev debate.Event
		if err := rc.conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("[watch] read: %v", err)
			}
			return
		}
		select {
		case rc.events <- ev:
		case <-rc.done:
			return
		}
	}
}

// Events returns the server's events. The channel closes with the
// connection.
func (rc *remoteConn) Events() <-chan debate.Event {
	return rc.events
}

// Vote sends the observer's vote.
func (rc *remoteConn) Vote(v debate.Vote) {
	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()
	msg := server.InboundMessage{Type: "vote", Vote: v.String()}
	if err := rc.conn.WriteJSON(msg); err != nil {
		log.Printf("[watch] send vote: %v", err)
	}
}

// Close sends a close frame and closes the connection.
func (rc *remoteConn) Close() error {
	var err error
	rc.closeOnce.Do(func() {
		close(rc.done)
		rc.writeMu.Lock()
		rc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		rc.writeMu.Unlock()
		err = rc.conn.Close()
	})
	return err
}

// websocketURL builds the debate stream URL from an http(s) base URL.
func websocketURL(base, id string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/debates/" + url.PathEscape(id)
	return u.String(), nil
}

// optionalStyle leaves an unset style flag out of the request so the
// server applies its default.
func optionalStyle(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

// createRemoteDebate registers a debate with POST /api/debates.
func createRemoteDebate(base string, req server.CreateDebateRequest) (*server.CreateDebateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(strings.TrimRight(base, "/")+"/api/debates", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create debate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var detail struct {
			Detail string `json:"detail"`
		}
		json.NewDecoder(resp.Body).Decode(&detail)
		if detail.Detail == "" {
			detail.Detail = resp.Status
		}
		return nil, fmt.Errorf("create debate: %s", detail.Detail)
	}

	var out server.CreateDebateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	return &out, nil
}
