package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
)

type commandFunc func(s *operator, args []string) (string, error)

type command struct {
	name     string
	usage    string
	summary  string
	category string
	fn       commandFunc
}

func (c *command) run(s *operator, args []string) (string, error) {
	return c.fn(s, args)
}

func (c *Console) builtinCommands() map[string]*command {
	list := []*command{
		{name: "help", usage: "help", summary: "list commands", category: "console", fn: c.help},
		{name: "quit", usage: "quit", summary: "leave the console", category: "console", fn: c.quit},
		{name: "status", usage: "status", summary: "show the session, mood and scene", category: "observe", fn: c.status},
		{name: "objects", usage: "objects [kind]", summary: "list world objects", category: "observe", fn: c.objects},
		{name: "history", usage: "history [mood|scenes|sessions]", summary: "show recent history", category: "observe", fn: c.history},
		{name: "mood", usage: "mood [x y]", summary: "show or force the mood", category: "steer", fn: c.mood},
		{name: "touch", usage: "touch <handle>", summary: "collide with an object", category: "steer", fn: c.touch},
		{name: "npc", usage: "npc <type> [dx dy]", summary: "touch an npc", category: "steer", fn: c.npc},
		{name: "event", usage: "event <type> <dx> <dy>", summary: "trigger a mood event", category: "steer", fn: c.event},
		{name: "enter", usage: "enter <area> <dx> <dy>", summary: "enter an area with its own drift", category: "steer", fn: c.enter},
		{name: "exit", usage: "exit [area]", summary: "leave the current area", category: "steer", fn: c.exit},
		{name: "move", usage: "move <x> <y> <z>", summary: "move the player", category: "steer", fn: c.move},
		{name: "hit", usage: "hit [damage]", summary: "hurt the player", category: "session", fn: c.hit},
		{name: "die", usage: "die [cause]", summary: "kill the player", category: "session", fn: c.die},
		{name: "fatal", usage: "fatal [reason]", summary: "end the dream with an error", category: "session", fn: c.fatal},
		{name: "faded", usage: "faded <in|out>", summary: "acknowledge a fade", category: "session", fn: c.faded},
	}

	out := make(map[string]*command, len(list))
	for _, cmd := range list {
		out[cmd.name] = cmd
	}
	return out
}

func (c *Console) help(_ *operator, _ []string) (string, error) {
	groups := map[string][]*command{}
	for _, cmd := range c.commands {
		groups[cmd.category] = append(groups[cmd.category], cmd)
	}

	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, cat := range categories {
		cmds := groups[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })

		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(cat))
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "  %-32s %s\n", cmd.usage, cmd.summary)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) quit(s *operator, _ []string) (string, error) {
	s.quit = true
	return "", nil
}

func (c *Console) status(_ *operator, _ []string) (string, error) {
	snap := c.ctrl.Snapshot()
	if !snap.Started {
		return "The dream has not started yet.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %d (%s) %s, %.0fs left\n", snap.SessionCount, snap.SessionId, snap.State, snap.Remaining)
	fmt.Fprintf(&b, "Mood (%.2f, %.2f) %s, magnitude %.2f\n", snap.Mood.X, snap.Mood.Y, snap.Mood.Quadrant, snap.Mood.Magnitude)
	fmt.Fprintf(&b, "Health %d/%d\n", snap.Health, snap.MaxHealth)
	fmt.Fprintf(&b, "Scene %s [%s], %d objects\n", snap.SceneName, snap.LinkState, snap.Objects)
	if len(snap.Distortions) > 0 {
		kinds := make([]string, len(snap.Distortions))
		for i, k := range snap.Distortions {
			kinds[i] = string(k)
		}
		fmt.Fprintf(&b, "Distortions: %s\n", strings.Join(kinds, ", "))
	}
	b.WriteString(c.wrap(snap.Description))
	return b.String(), nil
}

func (c *Console) objects(_ *operator, args []string) (string, error) {
	var kind game.ObjectKind
	if len(args) > 0 {
		kind = game.ObjectKind(strings.ToLower(args[0]))
	}

	objs := c.ctrl.Objects(kind)
	if len(objs) == 0 {
		return "Nothing here.", nil
	}

	var b strings.Builder
	for _, o := range objs {
		fmt.Fprintf(&b, "%5d %-10s %-18s", o.Handle, o.Kind, o.Name)
		if o.Linkable {
			target := o.LinkTarget
			if target == "" {
				target = "?"
			}
			fmt.Fprintf(&b, " -> %s", target)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) history(_ *operator, args []string) (string, error) {
	which := "mood"
	if len(args) > 0 {
		which = strings.ToLower(args[0])
	}

	var b strings.Builder
	switch which {
	case "mood":
		for _, h := range c.ctrl.MoodHistory() {
			fmt.Fprintf(&b, "%s (%.2f, %.2f) %s\n", h.Time.Format("15:04:05"), h.Mood.X, h.Mood.Y, h.Reason)
		}
	case "scenes":
		for _, h := range c.ctrl.SceneHistory() {
			fmt.Fprintf(&b, "%6.1fs %s\n", h.At.Seconds(), h.SceneId)
		}
	case "sessions":
		for _, h := range c.ctrl.SessionHistory() {
			fmt.Fprintf(&b, "#%d %s %.0fs %s\n", h.Session, h.Timestamp.Format("2006-01-02 15:04"), h.Duration, h.Mood.Quadrant)
		}
	default:
		return "", NewUserError("History of what? Try mood, scenes or sessions.")
	}

	if b.Len() == 0 {
		return "Nothing to remember yet.", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) mood(_ *operator, args []string) (string, error) {
	if len(args) == 0 {
		m := c.ctrl.Snapshot().Mood
		return fmt.Sprintf("Mood (%.2f, %.2f) %s, magnitude %.2f", m.X, m.Y, m.Quadrant, m.Magnitude), nil
	}

	v, err := parseVector(args, "mood [x y]")
	if err != nil {
		return "", err
	}
	c.ctrl.SetMood(v)
	return "The mood bends to your will.", nil
}

func (c *Console) touch(_ *operator, args []string) (string, error) {
	if len(args) != 1 {
		return "", NewUserError("Usage: touch <handle>")
	}
	h, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return "", NewUserError(fmt.Sprintf("%q is not an object handle.", args[0]))
	}

	c.ctrl.Submit(dream.Input{Topic: events.PlayerCollision, Payload: dream.Collision{Handle: game.Handle(h)}})
	return "You reach out.", nil
}

func (c *Console) npc(_ *operator, args []string) (string, error) {
	if len(args) != 1 && len(args) != 3 {
		return "", NewUserError("Usage: npc <type> [dx dy]")
	}

	touch := dream.NPCTouch{NPCType: args[0]}
	if len(args) == 3 {
		v, err := parseVector(args[1:], "npc <type> [dx dy]")
		if err != nil {
			return "", err
		}
		touch.MoodDelta = &v
	}

	c.ctrl.Submit(dream.Input{Topic: events.NPCTouch, Payload: touch})
	return fmt.Sprintf("You brush against %s.", args[0]), nil
}

func (c *Console) event(_ *operator, args []string) (string, error) {
	if len(args) != 3 {
		return "", NewUserError("Usage: event <type> <dx> <dy>")
	}
	v, err := parseVector(args[1:], "event <type> <dx> <dy>")
	if err != nil {
		return "", err
	}

	c.ctrl.Submit(dream.Input{Topic: events.EventTrigger, Payload: dream.EventTrigger{EventType: args[0], MoodDelta: v}})
	return "Something happens.", nil
}

func (c *Console) enter(_ *operator, args []string) (string, error) {
	if len(args) != 3 {
		return "", NewUserError("Usage: enter <area> <dx> <dy>")
	}
	v, err := parseVector(args[1:], "enter <area> <dx> <dy>")
	if err != nil {
		return "", err
	}

	c.ctrl.Submit(dream.Input{Topic: events.AreaEnter, Payload: dream.AreaEnter{Area: args[0], MoodDrift: v}})
	return fmt.Sprintf("You wander into %s.", args[0]), nil
}

func (c *Console) exit(_ *operator, args []string) (string, error) {
	area := ""
	if len(args) > 0 {
		area = args[0]
	}
	c.ctrl.Submit(dream.Input{Topic: events.AreaExit, Payload: dream.AreaExit{Area: area}})
	return "You wander out.", nil
}

func (c *Console) move(_ *operator, args []string) (string, error) {
	if len(args) != 3 {
		return "", NewUserError("Usage: move <x> <y> <z>")
	}
	var xyz [3]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return "", NewUserError(fmt.Sprintf("%q is not a number.", a))
		}
		xyz[i] = f
	}

	pos := game.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	c.ctrl.Submit(dream.Input{Topic: events.PlayerMoved, Payload: dream.PlayerMoved{Position: pos}})
	return "You move.", nil
}

func (c *Console) hit(_ *operator, args []string) (string, error) {
	var hit dream.Hit
	if len(args) > 1 {
		return "", NewUserError("Usage: hit [damage]")
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", NewUserError(fmt.Sprintf("%q is not an amount of damage.", args[0]))
		}
		hit.Damage = n
	}

	c.ctrl.Submit(dream.Input{Topic: events.PlayerHit, Payload: hit})
	return "Ouch.", nil
}

func (c *Console) die(_ *operator, args []string) (string, error) {
	c.ctrl.Submit(dream.Input{Topic: events.PlayerDied, Payload: dream.PlayerDied{Cause: strings.Join(args, " ")}})
	return "", nil
}

func (c *Console) fatal(_ *operator, args []string) (string, error) {
	c.ctrl.Submit(dream.Input{Topic: events.DreamFatal, Payload: dream.Fatal{Reason: strings.Join(args, " ")}})
	return "", nil
}

func (c *Console) faded(_ *operator, args []string) (string, error) {
	if len(args) != 1 || (args[0] != events.FadeDirectionIn && args[0] != events.FadeDirectionOut) {
		return "", NewUserError("Usage: faded <in|out>")
	}
	c.ctrl.Submit(dream.Input{Topic: events.FadeComplete, Payload: dream.FadeComplete{Type: args[0]}})
	return "", nil
}

func parseVector(args []string, usage string) (mood.Vector, error) {
	if len(args) != 2 {
		return mood.Vector{}, NewUserError("Usage: " + usage)
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	y, errY := strconv.ParseFloat(args[1], 64)
	if errX != nil || errY != nil {
		return mood.Vector{}, NewUserError("Mood values must be numbers.")
	}
	return mood.Vector{X: x, Y: y}, nil
}
