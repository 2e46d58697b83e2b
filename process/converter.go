package process

import (
	"strings"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
	"github.com/moyoez/fileshare-go/types"
)

// stateTTL bounds how long post-processing states are remembered. A file at
// rest with no tracked state reports ready.
const stateTTL = 6 * time.Hour

const queueDepth = 256

// Notifier pushes events to connected web clients. Satisfied by the
// notifyhub.
type Notifier interface {
	Broadcast(event *types.Event)
}

// Converter converts stored images to JPEG on a bounded worker pool,
// independent of the request/response cycle. Failures never propagate to the
// upload outcome already reported to the client: the raw file stays intact
// and the state flips to failed.
type Converter struct {
	root   string
	namer  *storage.Namer
	notify Notifier

	states *ttlworker.Cache[string, types.FileState]

	mu      sync.Mutex
	pending map[string]struct{}
	stopped bool

	queue    chan string
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewConverter creates a converter writing into root, resolving converted
// names through namer. notify may be nil.
func NewConverter(root string, workers int, namer *storage.Namer, notify Notifier) *Converter {
	if workers <= 0 {
		workers = 1
	}
	c := &Converter{
		root:    root,
		namer:   namer,
		notify:  notify,
		states:  ttlworker.NewCache[string, types.FileState](stateTTL),
		pending: make(map[string]struct{}),
		queue:   make(chan string, queueDepth),
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

// State implements storage.StateSource.
func (c *Converter) State(name string) types.FileState {
	if state := c.states.Get(name); state != "" {
		return state
	}
	return types.StateReady
}

// Enqueue schedules a conversion for a stored file. Fire-and-forget: the
// caller's response is never gated on it. At most one conversion runs per
// file; re-enqueueing a queued or running file is a no-op.
func (c *Converter) Enqueue(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if _, ok := c.pending[name]; ok {
		return
	}
	c.pending[name] = struct{}{}

	c.states.Set(name, types.StateRaw)
	select {
	case c.queue <- name:
	default:
		// Queue saturated. The raw file is stored and usable, so leave it
		// at raw instead of blocking an upload response.
		delete(c.pending, name)
		tool.DefaultLogger.Warnf("[Convert] Queue full, skipping conversion of %s", name)
	}
}

// Forget drops any tracked state for name. Called when the file is deleted
// so a later upload under the same name starts clean.
// Implements storage.StateSource.
func (c *Converter) Forget(name string) {
	c.states.Delete(name)
}

// Stop drains the queue and waits for running conversions. Call after the
// HTTP server has shut down. Enqueue becomes a no-op from here on.
func (c *Converter) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
		close(c.queue)
	})
	c.wg.Wait()
}

func (c *Converter) worker() {
	defer c.wg.Done()
	for name := range c.queue {
		c.run(name)
	}
}

func (c *Converter) run(name string) {
	defer c.unpend(name)

	c.states.Set(name, types.StateProcessing)
	c.broadcast(types.EventConvertStart, map[string]any{"name": name})

	converted, err := c.convertToJPEG(name)
	if err != nil {
		c.states.Set(name, types.StateFailed)
		c.broadcast(types.EventConvertFailed, map[string]any{"name": name, "reason": err.Error()})
		tool.DefaultLogger.Errorf("[Convert] Conversion failed for %s: %v", name, err)
		return
	}

	c.states.Delete(name)
	c.states.Set(converted, types.StateReady)
	c.broadcast(types.EventConvertDone, map[string]any{"name": name, "converted": converted})
	tool.DefaultLogger.Infof("[Convert] Converted %s to %s", name, converted)
}

func (c *Converter) unpend(name string) {
	c.mu.Lock()
	delete(c.pending, name)
	c.mu.Unlock()
}

func (c *Converter) broadcast(eventType string, data map[string]any) {
	if c.notify == nil {
		return
	}
	c.notify.Broadcast(&types.Event{Type: eventType, Data: data})
}

// jpegName returns the target filename for a conversion.
func jpegName(name string) string {
	ext := strings.LastIndex(name, ".")
	if ext <= 0 {
		return name + ".jpg"
	}
	return name[:ext] + ".jpg"
}
