package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Engine.IO packet types.
const (
	engineOpen    byte = '0'
	engineClose   byte = '1'
	enginePing    byte = '2'
	enginePong    byte = '3'
	engineMessage byte = '4'
	engineUpgrade byte = '5'
	engineNoop    byte = '6'
)

// Socket.IO packet types carried inside an Engine.IO message.
const (
	socketConnect      byte = '0'
	socketDisconnect   byte = '1'
	socketEvent        byte = '2'
	socketAck          byte = '3'
	socketConnectError byte = '4'
)

var errBadPacket = errors.New("relay: bad packet")

// handshake is the body of the Engine.IO open packet.
type handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// packet is one decoded text frame.
type packet struct {
	engine byte
	socket byte // zero unless engine == engineMessage

	// event and args are set for socketEvent; data holds the open
	// handshake, connect ack or connect error body.
	event string
	args  []json.RawMessage
	data  json.RawMessage
}

// firstArg returns the first event argument, or nil.
func (p packet) firstArg() json.RawMessage {
	if len(p.args) == 0 {
		return nil
	}
	return p.args[0]
}

func encodeEvent(event string, payload any) ([]byte, error) {
	body, err := json.Marshal([]any{event, payload})
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", event, err)
	}
	return append([]byte{engineMessage, socketEvent}, body...), nil
}

func encodeSocket(kind byte, data any) ([]byte, error) {
	out := []byte{engineMessage, kind}
	if data == nil {
		return out, nil
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

func decodePacket(frame []byte) (packet, error) {
	if len(frame) == 0 {
		return packet{}, errBadPacket
	}
	p := packet{engine: frame[0]}
	rest := frame[1:]

	switch p.engine {
	case engineOpen:
		p.data = json.RawMessage(rest)
		return p, nil
	case engineClose, enginePing, enginePong, engineUpgrade, engineNoop:
		return p, nil
	case engineMessage:
	default:
		return packet{}, fmt.Errorf("%w: engine type %q", errBadPacket, p.engine)
	}

	if len(rest) == 0 {
		return packet{}, fmt.Errorf("%w: empty message", errBadPacket)
	}
	p.socket = rest[0]
	rest = skipNamespaceAndAck(rest[1:])

	switch p.socket {
	case socketConnect, socketConnectError:
		if len(rest) > 0 {
			p.data = json.RawMessage(rest)
		}
	case socketDisconnect:
	case socketEvent, socketAck:
		var args []json.RawMessage
		if err := json.Unmarshal(rest, &args); err != nil {
			return packet{}, fmt.Errorf("%w: event body: %v", errBadPacket, err)
		}
		if p.socket == socketEvent {
			if len(args) == 0 {
				return packet{}, fmt.Errorf("%w: event without name", errBadPacket)
			}
			if err := json.Unmarshal(args[0], &p.event); err != nil {
				return packet{}, fmt.Errorf("%w: event name: %v", errBadPacket, err)
			}
			args = args[1:]
		}
		p.args = args
	default:
		return packet{}, fmt.Errorf("%w: socket type %q", errBadPacket, p.socket)
	}
	return p, nil
}

// skipNamespaceAndAck drops an optional "/nsp," prefix and ack id digits.
func skipNamespaceAndAck(b []byte) []byte {
	if len(b) > 0 && b[0] == '/' {
		if i := bytes.IndexByte(b, ','); i >= 0 {
			b = b[i+1:]
		} else {
			return nil
		}
	}
	return bytes.TrimLeft(b, "0123456789")
}

// endpointURL maps a base server URL to the Socket.IO WebSocket endpoint.
func endpointURL(base string) (string, error) {
	u, err := ParseURL(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
