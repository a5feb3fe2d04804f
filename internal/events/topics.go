package events

// Topic names an event stream. Topics double as NATS subject suffixes.
type Topic string

// Outbound topics.
const (
	MoodChanged      Topic = "mood.changed"
	MoodFinal        Topic = "mood.final"
	MoodClassified   Topic = "mood.classified"
	SceneChanged     Topic = "scene.changed"
	AudioSceneChange Topic = "audio.scene_change"
	DreamEvent       Topic = "dream.event"
	FadeOut          Topic = "fade.out"
	FadeIn           Topic = "fade.in"
	SessionEnd       Topic = "session.end"
	SessionNew       Topic = "session.new"
	PlayerHealth     Topic = "player.health"
)

// Inbound topics, produced by external collaborators.
const (
	PlayerCollision Topic = "player.collision"
	NPCTouch        Topic = "npc.touch"
	AreaEnter       Topic = "area.enter"
	AreaExit        Topic = "area.exit"
	EventTrigger    Topic = "event.trigger"
	PlayerDied      Topic = "player.died"
	DreamFatal      Topic = "dream.fatal"
	FadeComplete    Topic = "fade.complete"
	PlayerMoved     Topic = "player.moved"
	PlayerHit       Topic = "player.hit"
)

// Outbound lists every topic the core emits.
var Outbound = []Topic{
	MoodChanged, MoodFinal, MoodClassified, SceneChanged, AudioSceneChange,
	DreamEvent, FadeOut, FadeIn, SessionEnd, SessionNew, PlayerHealth,
}

// Inbound lists every topic the core consumes.
var Inbound = []Topic{
	PlayerCollision, NPCTouch, AreaEnter, AreaExit, EventTrigger,
	PlayerDied, DreamFatal, FadeComplete, PlayerMoved, PlayerHit,
}

// IsInbound reports whether t is a topic the core accepts from outside.
func IsInbound(t Topic) bool {
	for _, in := range Inbound {
		if in == t {
			return true
		}
	}
	return false
}
