// Package wsui serves the dialogue surface over websocket. Each connection
// gets its own engine and state; messages are JSON objects.
package wsui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nathoo/ruinscript/engine"
	"github.com/nathoo/ruinscript/engine/dialogue"
	"github.com/nathoo/ruinscript/engine/events"
	"github.com/nathoo/ruinscript/loader"
	"github.com/nathoo/ruinscript/types"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
)

type Server struct {
	lib      *loader.Library
	newState func() *types.State
	opts     engine.Options
	log      *zap.Logger

	upgrader websocket.Upgrader
}

// NewServer creates a server running scripts from lib. newState creates the
// state of each new connection; opts configure each connection's engine.
func NewServer(lib *loader.Library, newState func() *types.State, opts engine.Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		lib:      lib,
		newState: newState,
		opts:     opts,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		connID := uuid.NewString()
		log := s.log.With(zap.String("conn", connID))
		opts := s.opts
		opts.Logger = log
		eng := engine.New(s.lib, s.newState(), opts)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		defer eng.Abandon(context.Background())

		log.Info("dialogue connection opened", zap.String("remote", r.RemoteAddr))
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug("read failed", zap.Error(err))
				}
				break
			}

			reply := s.handle(ctx, eng, data)
			if err := writeJSON(conn, reply); err != nil {
				log.Debug("write failed", zap.Error(err))
				break
			}
		}
		log.Info("dialogue connection closed")
	}
}

// handle applies one client message to eng and returns the reply.
func (s *Server) handle(ctx context.Context, eng *engine.Engine, data []byte) ServerMsg {
	var msg ClientMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMsg{Type: TypeError, Error: "bad message: " + err.Error()}
	}

	switch msg.Type {
	case TypeStart:
		return s.reply(eng, eng.StartScript(ctx, msg.Input, types.CharaID(msg.Chara), msg.Scene))
	case TypeRespond:
		if msg.Choice != nil {
			return s.reply(eng, eng.Choose(ctx, *msg.Choice))
		}
		return s.reply(eng, eng.AdvanceScript(ctx, nil))
	case TypeClose:
		return s.reply(eng, eng.AdvanceScript(ctx, nil))
	case TypeAbandon:
		eng.Abandon(ctx)
		return ServerMsg{Type: TypeQuit}
	default:
		return ServerMsg{Type: TypeError, Error: "unknown message type " + msg.Type}
	}
}

// reply converts an advance result into the message for the surface.
func (s *Server) reply(eng *engine.Engine, res dialogue.Result) ServerMsg {
	out := ServerMsg{
		Run:     eng.RunID(),
		Notices: events.Notices(res.Events),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	switch res.Outcome {
	case dialogue.Continue:
		req := res.Request
		switch {
		case req == nil:
			out.Type = TypeError
			if res.Err == nil {
				out.Error = "nothing to show"
			}
		case req.Kind == dialogue.Talk:
			out.Type = TypeTalk
			out.Chara = string(req.Chara)
			s.fillTalk(&out, req.Talk)
		default:
			out.Type = TypeDialog
			out.Dialog = req.Kind.String()
			out.Chara = string(req.Chara)
		}
	case dialogue.UpdateTalkText:
		out.Type = TypeUpdate
		s.fillTalk(&out, res.Talk)
	case dialogue.Quit:
		out.Type = TypeQuit
	}
	return out
}

func (s *Server) fillTalk(out *ServerMsg, talk *types.TalkText) {
	if talk == nil {
		return
	}
	if talk.TargetChara != "" {
		out.Chara = string(talk.TargetChara)
	}
	out.TextID = talk.TextID
	out.Text = s.lib.Text(talk.TextID)
	for _, c := range talk.Choices {
		out.Choices = append(out.Choices, s.lib.Text(c))
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	}
	return nil
}
