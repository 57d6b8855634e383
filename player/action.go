package player

import (
	"math"

	"github.com/binzume/vrmanim/anim"
)

type LoopMode int

const (
	LoopOnce LoopMode = iota
	LoopRepeat
	LoopPingPong
)

// Action is a playback state of a clip on a Mixer.
type Action struct {
	mixer *Mixer
	clip  *anim.Clip

	time        float32
	running     bool
	finished    bool
	loop        LoopMode
	repetitions int
	loopCount   int
	weight      float32

	// ClampWhenFinished keeps the last frame after a finite loop ends.
	ClampWhenFinished bool
}

func (a *Action) Clip() *anim.Clip {
	return a.clip
}

func (a *Action) Play() *Action {
	if !a.running {
		a.time = 0
		a.loopCount = 0
		a.finished = false
	}
	a.running = true
	return a
}

func (a *Action) Stop() *Action {
	a.running = false
	a.finished = false
	a.time = 0
	a.loopCount = 0
	return a
}

// SetLoop sets loop mode. repetitions <= 0 means infinite.
func (a *Action) SetLoop(mode LoopMode, repetitions int) *Action {
	a.loop = mode
	a.repetitions = repetitions
	return a
}

func (a *Action) SetEffectiveWeight(w float32) *Action {
	a.weight = w
	return a
}

func (a *Action) EffectiveWeight() float32 {
	return a.weight
}

// Time returns local time of the action in clip time units.
func (a *Action) Time() float32 {
	return a.time
}

// SetTime jumps to t without firing loops.
func (a *Action) SetTime(t float32) *Action {
	a.time = t
	return a
}

func (a *Action) IsRunning() bool {
	return a.running
}

// active reports whether the action contributes to the pose.
func (a *Action) active() bool {
	return a.running || (a.finished && a.ClampWhenFinished)
}

func (a *Action) finish(t float32) {
	a.time = t
	a.running = false
	a.finished = true
}

func (a *Action) update(delta float32) {
	if !a.running {
		return
	}
	d := a.clip.Duration
	if d <= 0 {
		a.time = 0
		if a.loop == LoopOnce {
			a.finish(0)
		}
		return
	}
	t := a.time + delta

	switch a.loop {
	case LoopOnce:
		if t >= d {
			a.finish(d)
			return
		}
		if t < 0 {
			t = 0
		}
		a.time = t
	default:
		loops := int(math.Floor(float64(t / d)))
		if loops > 0 {
			a.loopCount += loops
			if a.repetitions > 0 && a.loopCount >= a.repetitions {
				end := d
				if a.loop == LoopPingPong && a.repetitions%2 == 0 {
					end = 0
				}
				a.finish(end)
				return
			}
		}
		t = float32(math.Mod(float64(t), float64(d)))
		if t < 0 {
			t += d
		}
		a.time = t
	}
}

// localTime maps action time to the sampling time of the clip.
func (a *Action) localTime() float32 {
	if a.loop == LoopPingPong && a.running && a.loopCount%2 == 1 {
		return a.clip.Duration - a.time
	}
	return a.time
}
