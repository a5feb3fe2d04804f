package session

const (
	DefaultMaxHealth = 100
	DefaultHitDamage = 10

	// CauseHealth is the death cause when health runs out.
	CauseHealth = "health"
)

// HealthEvent is published on events.PlayerHealth.
type HealthEvent struct {
	Health int `json:"health"`
	Max    int `json:"max"`
}

// Health is the dreamer's hit points for one session.
type Health struct {
	max     int
	damage  int
	current int
}

func NewHealth(max, damage int) *Health {
	if max <= 0 {
		max = DefaultMaxHealth
	}
	if damage <= 0 {
		damage = DefaultHitDamage
	}
	return &Health{max: max, damage: damage, current: max}
}

func (h *Health) Current() int {
	return h.current
}

func (h *Health) Max() int {
	return h.max
}

func (h *Health) Event() HealthEvent {
	return HealthEvent{Health: h.current, Max: h.max}
}

// Hit removes damage, or the default hit damage when damage is not
// positive. It reports whether this hit emptied the pool; hits on an empty
// pool are ignored.
func (h *Health) Hit(damage int) bool {
	if h.current == 0 {
		return false
	}
	if damage <= 0 {
		damage = h.damage
	}
	h.current -= damage
	if h.current <= 0 {
		h.current = 0
		return true
	}
	return false
}

func (h *Health) Reset() {
	h.current = h.max
}
