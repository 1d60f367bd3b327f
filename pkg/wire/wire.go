// Package wire implements the client/relay JSON array frame protocol
// (spec §4.7, C9): three outbound shapes, six inbound shapes, each a
// top-level JSON array discriminated by its first string element.
// Grounded on the teacher's pkg/models/event.go Message struct and the
// frame handling in pkg/relay/relay.go, generalized from the teacher's
// relay-side dispatch into a typed client-side encode/decode pair.
package wire

import (
	"bytes"
	"encoding/json"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
	"cosanostra/pkg/filter"
)

// ClientMessage is a tagged union of the three frames a client sends.
type ClientMessage struct {
	Type         string // "EVENT", "REQ", "CLOSE"
	Event        *event.Event
	SubID        string
	Filters      []filter.Filter
}

// NewEventMessage builds an outbound ["EVENT", <event>] frame.
func NewEventMessage(ev event.Event) ClientMessage {
	return ClientMessage{Type: "EVENT", Event: &ev}
}

// NewReqMessage builds an outbound ["REQ", <subId>, <filter>, ...] frame.
func NewReqMessage(subID string, filters ...filter.Filter) ClientMessage {
	return ClientMessage{Type: "REQ", SubID: subID, Filters: filters}
}

// NewCloseMessage builds an outbound ["CLOSE", <subId>] frame.
func NewCloseMessage(subID string) ClientMessage {
	return ClientMessage{Type: "CLOSE", SubID: subID}
}

// Encode serializes m as the minimal JSON array the relay expects, with no
// forward-slash escaping (spec §4.7).
func (m ClientMessage) Encode() ([]byte, error) {
	var arr []interface{}
	switch m.Type {
	case "EVENT":
		arr = []interface{}{"EVENT", m.Event}
	case "REQ":
		arr = []interface{}{"REQ", m.SubID}
		for _, f := range m.Filters {
			arr = append(arr, f)
		}
	case "CLOSE":
		arr = []interface{}{"CLOSE", m.SubID}
	default:
		return nil, cerr.New(cerr.Protocol, "unknown client message type: "+m.Type)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(arr); err != nil {
		return nil, cerr.Wrap(cerr.Serialization, "encode client message", err)
	}
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

// RelayMessageKind discriminates the six inbound frame shapes.
type RelayMessageKind int

const (
	RelayEvent RelayMessageKind = iota
	RelayOK
	RelayEOSE
	RelayClosed
	RelayNotice
	RelayAuth
)

// RelayMessage is a decoded inbound frame. Only the fields relevant to Kind
// are populated.
type RelayMessage struct {
	Kind    RelayMessageKind
	SubID   string
	Event   event.Event
	EventID string
	OK      bool
	Message string
	Challenge string
}

// DecodeRelayMessage parses one relay->client frame, validating the
// discriminant and positional element types (spec §4.7).
func DecodeRelayMessage(data []byte) (RelayMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return RelayMessage{}, cerr.Wrap(cerr.Protocol, "decode relay frame", err)
	}
	if len(arr) < 1 {
		return RelayMessage{}, cerr.New(cerr.Protocol, "empty relay frame")
	}
	var tag string
	if err := json.Unmarshal(arr[0], &tag); err != nil {
		return RelayMessage{}, cerr.Wrap(cerr.Protocol, "relay frame discriminant must be a string", err)
	}

	switch tag {
	case "EVENT":
		if len(arr) != 3 {
			return RelayMessage{}, shapeError("EVENT", `["EVENT", <subId>, <event>]`)
		}
		var subID string
		var ev event.Event
		if err := json.Unmarshal(arr[1], &subID); err != nil {
			return RelayMessage{}, shapeError("EVENT", `["EVENT", <subId>, <event>]`)
		}
		if err := json.Unmarshal(arr[2], &ev); err != nil {
			return RelayMessage{}, shapeError("EVENT", `["EVENT", <subId>, <event>]`)
		}
		return RelayMessage{Kind: RelayEvent, SubID: subID, Event: ev}, nil

	case "OK":
		if len(arr) != 3 && len(arr) != 4 {
			return RelayMessage{}, shapeError("OK", `["OK", <eventId>, <bool>, <message?>]`)
		}
		var eventID string
		var ok bool
		if err := json.Unmarshal(arr[1], &eventID); err != nil {
			return RelayMessage{}, shapeError("OK", `["OK", <eventId>, <bool>, <message?>]`)
		}
		if err := json.Unmarshal(arr[2], &ok); err != nil {
			return RelayMessage{}, shapeError("OK", `["OK", <eventId>, <bool>, <message?>]`)
		}
		var msg string
		if len(arr) == 4 {
			if err := json.Unmarshal(arr[3], &msg); err != nil {
				return RelayMessage{}, shapeError("OK", `["OK", <eventId>, <bool>, <message?>]`)
			}
		}
		return RelayMessage{Kind: RelayOK, EventID: eventID, OK: ok, Message: msg}, nil

	case "EOSE":
		if len(arr) != 2 {
			return RelayMessage{}, shapeError("EOSE", `["EOSE", <subId>]`)
		}
		var subID string
		if err := json.Unmarshal(arr[1], &subID); err != nil {
			return RelayMessage{}, shapeError("EOSE", `["EOSE", <subId>]`)
		}
		return RelayMessage{Kind: RelayEOSE, SubID: subID}, nil

	case "CLOSED":
		if len(arr) != 2 && len(arr) != 3 {
			return RelayMessage{}, shapeError("CLOSED", `["CLOSED", <subId>, <message?>]`)
		}
		var subID string
		if err := json.Unmarshal(arr[1], &subID); err != nil {
			return RelayMessage{}, shapeError("CLOSED", `["CLOSED", <subId>, <message?>]`)
		}
		var msg string
		if len(arr) == 3 {
			if err := json.Unmarshal(arr[2], &msg); err != nil {
				return RelayMessage{}, shapeError("CLOSED", `["CLOSED", <subId>, <message?>]`)
			}
		}
		return RelayMessage{Kind: RelayClosed, SubID: subID, Message: msg}, nil

	case "NOTICE":
		if len(arr) != 2 {
			return RelayMessage{}, shapeError("NOTICE", `["NOTICE", <message>]`)
		}
		var msg string
		if err := json.Unmarshal(arr[1], &msg); err != nil {
			return RelayMessage{}, shapeError("NOTICE", `["NOTICE", <message>]`)
		}
		return RelayMessage{Kind: RelayNotice, Message: msg}, nil

	case "AUTH":
		if len(arr) != 2 {
			return RelayMessage{}, shapeError("AUTH", `["AUTH", <challenge>]`)
		}
		var challenge string
		if err := json.Unmarshal(arr[1], &challenge); err != nil {
			return RelayMessage{}, shapeError("AUTH", `["AUTH", <challenge>]`)
		}
		return RelayMessage{Kind: RelayAuth, Challenge: challenge}, nil

	default:
		return RelayMessage{}, cerr.New(cerr.Protocol, "unknown relay message type: "+tag)
	}
}

func shapeError(tag, shape string) error {
	return cerr.New(cerr.Protocol, "malformed "+tag+" frame, expected "+shape)
}
