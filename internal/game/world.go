package game

import (
	"sort"
	"sync"
)

const DefaultFOV = 75.0

// World is the single source of truth for everything placed in the dream:
// scene objects, the camera, the player and the ambient lighting.
// All access goes through its methods.
type World struct {
	mu      sync.RWMutex
	objects map[Handle]*Object
	next    Handle

	camera   Camera
	player   Vec3
	lighting Lighting
	audio    string

	ready   bool
	waiting []func()
}

func NewWorld() *World {
	return &World{
		objects:  map[Handle]*Object{},
		camera:   Camera{FOV: DefaultFOV},
		lighting: Lighting{Color: 0xFFFFFF, Intensity: 0.8},
	}
}

// Spawn registers o and returns its new handle.
func (w *World) Spawn(o Object) Handle {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.next++
	o.Handle = w.next
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Opacity == 0 {
		o.Opacity = 1
	}
	w.objects[o.Handle] = &o
	return o.Handle
}

// Object returns a copy of the object with handle h.
func (w *World) Object(h Handle) (Object, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	o, ok := w.objects[h]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Update applies fn to the object with handle h while holding the lock.
func (w *World) Update(h Handle, fn func(*Object)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	o, ok := w.objects[h]
	if !ok {
		return ErrObjectNotFound
	}
	fn(o)
	o.Handle = h
	return nil
}

// Remove deletes h. Removing a missing handle is a no-op.
func (w *World) Remove(h Handle) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.objects[h]; !ok {
		return false
	}
	delete(w.objects, h)
	return true
}

// ClearSceneOwned removes every scene-owned object and returns how many
// were removed.
func (w *World) ClearSceneOwned() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for h, o := range w.objects {
		if o.SceneOwned {
			delete(w.objects, h)
			n++
		}
	}
	return n
}

// Objects returns copies of the objects accepted by filter, ordered by
// handle. A nil filter accepts everything.
func (w *World) Objects(filter func(Object) bool) []Object {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Object, 0, len(w.objects))
	for _, o := range w.objects {
		if filter == nil || filter(*o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

func (w *World) Camera() Camera {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.camera
}

func (w *World) SetCamera(c Camera) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.camera = c
}

func (w *World) PlayerPosition() Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.player
}

func (w *World) SetPlayerPosition(p Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player = p
}

func (w *World) Lighting() Lighting {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lighting
}

func (w *World) SetLighting(l Lighting) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lighting = l
}

func (w *World) AudioProfile() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.audio
}

func (w *World) SetAudioProfile(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.audio = p
}
