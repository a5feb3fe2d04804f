package dream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
)

var ErrUnknownTopic = errors.New("unknown inbound topic")

// Input is one message from an outside collaborator. Payload holds the
// topic's payload struct.
type Input struct {
	Topic   events.Topic
	Payload any
}

type Collision struct {
	Handle game.Handle `json:"handle"`
}

type NPCTouch struct {
	NPCType   string       `json:"npc_type"`
	MoodDelta *mood.Vector `json:"mood_delta,omitempty"`
}

type AreaEnter struct {
	Area      string      `json:"area"`
	MoodDrift mood.Vector `json:"mood_drift"`
}

type AreaExit struct {
	Area string `json:"area"`
}

type EventTrigger struct {
	EventType string      `json:"event_type"`
	MoodDelta mood.Vector `json:"mood_delta"`
}

type PlayerDied struct {
	Cause string `json:"cause"`
}

type Fatal struct {
	Reason string `json:"reason"`
}

type FadeComplete struct {
	Type string `json:"type"`
}

type PlayerMoved struct {
	Position game.Vec3 `json:"position"`
}

// Hit costs the player health. A zero Damage uses the default hit.
type Hit struct {
	Damage int `json:"damage"`
}

// Envelope is the wire form shared by every transport.
type Envelope struct {
	Topic events.Topic    `json:"topic"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DecodeEnvelope parses a {"topic": ..., "data": ...} message.
func DecodeEnvelope(raw []byte) (Input, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Input{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return DecodeInput(env.Topic, env.Data)
}

// DecodeInput parses the payload for an inbound topic. An empty payload
// decodes to the zero value.
func DecodeInput(topic events.Topic, data []byte) (Input, error) {
	var payload any
	switch topic {
	case events.PlayerCollision:
		payload = &Collision{}
	case events.NPCTouch:
		payload = &NPCTouch{}
	case events.AreaEnter:
		payload = &AreaEnter{}
	case events.AreaExit:
		payload = &AreaExit{}
	case events.EventTrigger:
		payload = &EventTrigger{}
	case events.PlayerDied:
		payload = &PlayerDied{}
	case events.DreamFatal:
		payload = &Fatal{}
	case events.FadeComplete:
		payload = &FadeComplete{}
	case events.PlayerMoved:
		payload = &PlayerMoved{}
	case events.PlayerHit:
		payload = &Hit{}
	default:
		return Input{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, payload); err != nil {
			return Input{}, fmt.Errorf("decoding %s: %w", topic, err)
		}
	}

	return Input{Topic: topic, Payload: deref(payload)}, nil
}

func deref(p any) any {
	switch v := p.(type) {
	case *Collision:
		return *v
	case *NPCTouch:
		return *v
	case *AreaEnter:
		return *v
	case *AreaExit:
		return *v
	case *EventTrigger:
		return *v
	case *PlayerDied:
		return *v
	case *Fatal:
		return *v
	case *FadeComplete:
		return *v
	case *PlayerMoved:
		return *v
	case *Hit:
		return *v
	}
	return p
}
