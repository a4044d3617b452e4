package hitplot

// InjectMove queues a pointer move to (x, y) in plot-relative pixels.
// The event is consumed on the next Tick.
func (c *Chart) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, PointerInput{Kind: PointerMove, X: x, Y: y})
}

// InjectClick queues a click at (x, y).
func (c *Chart) InjectClick(x, y float64) {
	c.injectQueue = append(c.injectQueue, PointerInput{Kind: PointerClick, X: x, Y: y})
}

// InjectDoubleClick queues a double click at (x, y).
func (c *Chart) InjectDoubleClick(x, y float64) {
	c.injectQueue = append(c.injectQueue, PointerInput{Kind: PointerDoubleClick, X: x, Y: y})
}

// InjectLeave queues the pointer leaving the plot.
func (c *Chart) InjectLeave() {
	c.injectQueue = append(c.injectQueue, PointerInput{Kind: PointerLeave})
}

// InjectPath queues moves linearly interpolated from (fromX, fromY) to
// (toX, toY) over the given number of frames. Minimum frames is 2.
func (c *Chart) InjectPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// Pending returns the number of queued synthetic events.
func (c *Chart) Pending() int {
	return len(c.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through HandlePointer. Returns true if an event was consumed.
func (c *Chart) processInjectedInput() bool {
	if c.script != nil {
		c.script.step(c)
	}
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	c.HandlePointer(evt)
	return true
}
