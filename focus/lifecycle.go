package focus

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultDisplayDuration is how long a detection stays visible
	DefaultDisplayDuration = 4 * time.Second
	// DefaultCooldownDuration is how long new detections are ignored after the display ends
	DefaultCooldownDuration = 1 * time.Second
)

// Phase is state of the display cycle
type Phase uint16

const (
	// PhaseIdle accepts the next detection
	PhaseIdle Phase = iota
	// PhaseDisplaying shows a detection
	PhaseDisplaying
	// PhaseCooldown shows nothing and still rejects detections
	PhaseCooldown
)

func (phase Phase) String() string {
	switch phase {
	case PhaseIdle:
		return "idle"
	case PhaseDisplaying:
		return "displaying"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Detection is a labeled object. BBox is in image space of a frame sized ImageWidth x ImageHeight.
type Detection struct {
	Label       string
	Confidence  float64
	BBox        Rectangle
	ImageWidth  int
	ImageHeight int
}

// DisplayUpdate is a published display state. Visible is false when nothing is shown.
type DisplayUpdate struct {
	Detection Detection
	Visible   bool
}

// Controller turns detection events into a display-then-cooldown cycle.
// Detections arriving while a cycle is running are dropped.
// Methods are safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	clock clock.Clock

	displayDuration  time.Duration
	cooldownDuration time.Duration

	phase   Phase
	display Detection
	visible bool

	// Incremented whenever the running cycle is abandoned. Timers of older cycles are no-ops.
	cycle  uint64
	timer  *clock.Timer
	closed bool

	subscribers      map[uint64]chan DisplayUpdate
	nextSubscriberID uint64
}

// NewControllerDefault creates controller with default durations. Nil clock means wall clock.
func NewControllerDefault(clk clock.Clock) *Controller {
	return NewController(clk, DefaultDisplayDuration, DefaultCooldownDuration)
}

// NewController creates new instance of Controller. Nil clock means wall clock.
func NewController(clk clock.Clock, displayDuration, cooldownDuration time.Duration) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{
		clock:            clk,
		displayDuration:  displayDuration,
		cooldownDuration: cooldownDuration,
		phase:            PhaseIdle,
		subscribers:      make(map[uint64]chan DisplayUpdate),
	}
}

// OnObjectDetected starts a new cycle showing the detection. It reports whether the detection was
// accepted: anything but the idle phase drops it.
func (c *Controller) OnObjectDetected(detection Detection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.phase != PhaseIdle {
		return false
	}
	c.stopTimer()
	c.cycle++
	cycle := c.cycle

	c.phase = PhaseDisplaying
	c.display = detection
	c.visible = true
	c.publish()

	// Cooldown ends relative to the cycle start, not to the display timer delivery
	cooldownEnd := c.clock.Now().Add(c.displayDuration + c.cooldownDuration)
	c.timer = c.clock.AfterFunc(c.displayDuration, func() {
		c.finishDisplay(cycle, cooldownEnd)
	})
	return true
}

// ClearDetection hides the detection and returns to idle at once, skipping the cooldown
func (c *Controller) ClearDetection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimer()
	c.cycle++
	c.phase = PhaseIdle
	if c.visible {
		c.display = Detection{}
		c.visible = false
		c.publish()
	}
}

// Close cancels pending transitions and closes all subscriptions. Nothing is published afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimer()
	c.cycle++
	for id, ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, id)
	}
}

// Display returns the currently shown detection, if any
func (c *Controller) Display() (Detection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display, c.visible
}

// Phase returns current phase of the cycle
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Subscribe returns channel receiving display changes, starting with the current state.
// Slow readers only see the latest state. Call the returned function to unsubscribe.
func (c *Controller) Subscribe() (<-chan DisplayUpdate, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan DisplayUpdate, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSubscriberID
	c.nextSubscriberID++
	c.subscribers[id] = ch
	ch <- DisplayUpdate{Detection: c.display, Visible: c.visible}

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			close(sub)
			delete(c.subscribers, id)
		}
	}
}

func (c *Controller) finishDisplay(cycle uint64, cooldownEnd time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || cycle != c.cycle || c.phase != PhaseDisplaying {
		return
	}
	c.phase = PhaseCooldown
	c.display = Detection{}
	c.visible = false
	c.publish()

	remaining := cooldownEnd.Sub(c.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	c.timer = c.clock.AfterFunc(remaining, func() {
		c.finishCooldown(cycle)
	})
}

func (c *Controller) finishCooldown(cycle uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || cycle != c.cycle || c.phase != PhaseCooldown {
		return
	}
	c.phase = PhaseIdle
	c.timer = nil
}

// stopTimer must be called with c.mu held. A timer which already fired is neutralized by the cycle check.
func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// publish must be called with c.mu held
func (c *Controller) publish() {
	update := DisplayUpdate{Detection: c.display, Visible: c.visible}
	for _, ch := range c.subscribers {
		// Keep only the latest state for readers lagging behind
		select {
		case <-ch:
		default:
		}
		ch <- update
	}
}
