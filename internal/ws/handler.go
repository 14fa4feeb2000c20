package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"feedin_simulator/internal/feedin"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes requests to the bridge.
type Handler struct {
	hub    *Hub
	bridge *Bridge
}

func NewHandler(hub *Hub, bridge *Bridge) *Handler {
	return &Handler{hub: hub, bridge: bridge}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	// Send initial data:loaded message
	h.sendDataLoaded(client)

	// Read messages from client
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		h.sendError(c, "", "invalid message")
		return
	}

	switch env.Type {
	case TypeSetsList:
		h.send(c, TypeSets, h.bridge.Sets())

	case TypeWindEvaluate:
		h.evaluate(c, env, feedin.KindWind)

	case TypePVEvaluate:
		h.evaluate(c, env, feedin.KindPV)

	case TypeResultsList:
		h.send(c, TypeResultsList, h.bridge.Results())

	case TypeResultGet:
		var p ResultGetPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ID == "" {
			h.sendError(c, env.Type, "payload must name a run id")
			return
		}
		r, err := h.bridge.Result(p.ID)
		if err != nil {
			h.sendError(c, env.Type, err.Error())
			return
		}
		h.send(c, TypeFeedinResult, ResultFromStore(r))

	default:
		log.Printf("Unknown message type: %s", env.Type)
		h.sendError(c, env.Type, "unknown message type")
	}
}

func (h *Handler) evaluate(c *Client, env Envelope, kind feedin.Kind) {
	var p EvaluatePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil || p.Set == "" {
		log.Printf("Invalid %s payload: %v", env.Type, err)
		h.sendError(c, env.Type, "payload must name a set")
		return
	}

	start := time.Now()
	r, err := h.bridge.Evaluate(kind, p.Set)
	if err != nil {
		log.Printf("Evaluating %s set %s: %v", kind, p.Set, err)
		h.sendError(c, env.Type, err.Error())
		return
	}
	log.Printf("Evaluated %s set %s: %d columns in %v", kind, p.Set, r.Table.Width(), time.Since(start).Round(time.Millisecond))
	h.bridge.Publish(r)
}

func (h *Handler) dataLoadedMessage() ([]byte, error) {
	in := h.bridge.in
	payload := DataLoadedPayload{
		Location:  in.Location.Name,
		Latitude:  in.Location.Latitude,
		Longitude: in.Location.Longitude,
		Rows:      len(in.Wind.Index),
		Variables: variableInfos(in.Weather),
		WindSets:  in.WindSets.Names(),
		PVSets:    in.PVSets.Names(),
	}
	if n := len(in.Wind.Index); n > 0 {
		payload.TimeRange = TimeRangeInfo{
			Start: in.Wind.Index[0].Format(time.RFC3339),
			End:   in.Wind.Index[n-1].Format(time.RFC3339),
		}
	}
	return NewEnvelope(TypeDataLoaded, payload)
}

func (h *Handler) sendDataLoaded(c *Client) {
	msg, err := h.dataLoadedMessage()
	if err != nil {
		log.Printf("Error creating data:loaded message: %v", err)
		return
	}
	h.hub.Send(c, msg)
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Printf("Error creating %s message: %v", msgType, err)
		return
	}
	h.hub.Send(c, msg)
}

func (h *Handler) sendError(c *Client, request, message string) {
	h.send(c, TypeError, ErrorPayload{Request: request, Message: message})
}
