package hitplot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoSteps is returned by LoadScript for a script without steps.
var ErrNoSteps = errors.New("hitplot: script has no steps")

// scriptStep is a single action in an interaction script.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Ms     int     `json:"ms,omitempty"`
}

// script is the top-level JSON structure for an interaction script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected pointer events across ticks for replay
// and automated testing. Attach to a Chart via SetScript.
//
// Actions: "move" and "click" and "dblclick" at (x, y), "path" from (x, y)
// to (toX, toY) over frames, "leave", and "wait" for ms of clock time or a
// number of frames.
type ScriptRunner struct {
	steps      []scriptStep
	cursor     int
	waitFrames int
	waitUntil  time.Time
	done       bool
}

// LoadScript parses a JSON interaction script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrNoSteps)
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "move", "click", "dblclick", "path", "leave", "wait":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// SetScript attaches a runner to the chart. Its step method is called from
// Tick before injected input is processed. Nil detaches.
func (c *Chart) SetScript(r *ScriptRunner) {
	c.script = r
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Len returns the number of steps.
func (r *ScriptRunner) Len() int {
	return len(r.steps)
}

// step advances the runner by one tick. Called from Chart.Tick.
func (r *ScriptRunner) step(c *Chart) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(c.injectQueue) > 0 {
		return
	}
	if r.waitFrames > 0 {
		r.waitFrames--
		return
	}
	if !r.waitUntil.IsZero() {
		if c.clock.Now().Before(r.waitUntil) {
			return
		}
		r.waitUntil = time.Time{}
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		c.InjectMove(st.X, st.Y)
	case "click":
		c.InjectClick(st.X, st.Y)
	case "dblclick":
		c.InjectDoubleClick(st.X, st.Y)
	case "path":
		c.InjectPath(st.X, st.Y, st.ToX, st.ToY, st.Frames)
	case "leave":
		c.InjectLeave()
	case "wait":
		if st.Ms > 0 {
			r.waitUntil = c.clock.Now().Add(time.Duration(st.Ms) * time.Millisecond)
		}
		if st.Frames > 0 {
			r.waitFrames = st.Frames - 1 // this frame counts as one
		}
	}
}

// Run attaches r to c and ticks the chart until the script finishes,
// advancing clock by frame before every tick. It stops after maxFrames ticks
// and returns the number of ticks used.
func (r *ScriptRunner) Run(c *Chart, clock *ManualClock, frame time.Duration, maxFrames int) int {
	c.SetScript(r)
	defer c.SetScript(nil)
	n := 0
	for !r.done && n < maxFrames {
		clock.Advance(frame)
		c.Tick()
		n++
	}
	return n
}
