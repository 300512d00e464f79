package slogutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/common/model"

	"website/internal/config"
)

// LokiHandler implements slog.Handler and pushes batches of records to Grafana Loki.
type LokiHandler struct {
	endpoint      string
	labels        map[string]string
	batchSize     int
	flushInterval time.Duration
	level         slog.Level
	client        *http.Client

	mu      sync.Mutex
	buffer  []lokiEntry
	done    chan struct{}
	stopped bool
	loop    sync.WaitGroup
	sends   sync.WaitGroup
}

type lokiEntry struct {
	timestamp time.Time
	line      string
	level     string
}

// lokiPushRequest is the JSON body of POST /loki/api/v1/push.
type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// NewLokiHandler creates a handler that pushes logs to Loki.
// baseLabels apply to every stream; cfg.Labels override them. Label sets that
// Loki would reject are refused here.
func NewLokiHandler(cfg *config.RemoteLogConfig, baseLabels map[string]string, level slog.Level) (*LokiHandler, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("loki endpoint is required")
	}

	labels := make(map[string]string, len(baseLabels)+len(cfg.Labels)+1)
	for k, v := range baseLabels {
		labels[k] = v
	}
	for k, v := range cfg.Labels {
		labels[k] = v
	}
	if _, ok := labels["host"]; !ok {
		if hostname, err := os.Hostname(); err == nil {
			labels["host"] = hostname
		}
	}

	set := make(model.LabelSet, len(labels))
	for k, v := range labels {
		set[model.LabelName(k)] = model.LabelValue(v)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loki labels: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := 5 * time.Second
	if cfg.FlushInterval != "" {
		if d, err := time.ParseDuration(cfg.FlushInterval); err == nil && d > 0 {
			flushInterval = d
		}
	}

	return &LokiHandler{
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/") + "/loki/api/v1/push",
		labels:        labels,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		level:         level,
		buffer:        make([]lokiEntry, 0, batchSize),
		done:          make(chan struct{}),
		client:        &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Start begins the background flush goroutine.
func (h *LokiHandler) Start() {
	h.loop.Add(1)
	go h.flushLoop()
}

// Stop flushes what is buffered and waits for in-flight pushes.
// It is safe to call more than once.
func (h *LokiHandler) Stop() error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	close(h.done)
	h.mu.Unlock()

	h.loop.Wait()

	h.mu.Lock()
	h.flushLocked()
	h.mu.Unlock()

	h.sends.Wait()
	return nil
}

// Close is Stop, so the handler can sit in a list of io.Closers.
func (h *LokiHandler) Close() error { return h.Stop() }

// Enabled implements slog.Handler.
func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *LokiHandler) Handle(ctx context.Context, r slog.Record) error {
	line := formatLokiLine(ctx, r, nil)
	return h.enqueue(r, line)
}

func (h *LokiHandler) enqueue(r slog.Record, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, lokiEntry{
		timestamp: r.Time,
		line:      line,
		level:     r.Level.String(),
	})
	if len(h.buffer) >= h.batchSize {
		h.flushLocked()
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lokiChild{parent: h, attrs: append([]slog.Attr(nil), attrs...)}
}

// WithGroup implements slog.Handler.
func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &lokiChild{parent: h, groups: []string{name}}
}

// lokiChild carries attrs and groups without copying the parent's locks.
type lokiChild struct {
	parent *LokiHandler
	attrs  []slog.Attr
	groups []string
}

func (c *lokiChild) Enabled(ctx context.Context, level slog.Level) bool {
	return c.parent.Enabled(ctx, level)
}

func (c *lokiChild) Handle(ctx context.Context, r slog.Record) error {
	if len(c.groups) > 0 {
		prefix := strings.Join(c.groups, ".") + "."
		grouped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
		r.Attrs(func(a slog.Attr) bool {
			grouped.AddAttrs(slog.Attr{Key: prefix + a.Key, Value: a.Value})
			return true
		})
		r = grouped
	}
	return c.parent.enqueue(r, formatLokiLine(ctx, r, c.attrs))
}

func (c *lokiChild) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lokiChild{
		parent: c.parent,
		attrs:  append(append([]slog.Attr(nil), c.attrs...), attrs...),
		groups: c.groups,
	}
}

func (c *lokiChild) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	return &lokiChild{
		parent: c.parent,
		attrs:  c.attrs,
		groups: append(append([]string(nil), c.groups...), name),
	}
}

// formatLokiLine renders level=... msg="..." key=value in logfmt style.
func formatLokiLine(ctx context.Context, r slog.Record, pre []slog.Attr) string {
	var buf bytes.Buffer
	buf.WriteString("level=")
	buf.WriteString(r.Level.String())
	buf.WriteString(" msg=")
	buf.WriteString(strconv.Quote(r.Message))

	for _, a := range pre {
		writeLokiAttr(&buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeLokiAttr(&buf, a)
		return true
	})
	if id := RequestID(ctx); id != "" {
		writeLokiAttr(&buf, slog.String("requestID", id))
	}
	return buf.String()
}

func writeLokiAttr(buf *bytes.Buffer, a slog.Attr) {
	buf.WriteByte(' ')
	buf.WriteString(a.Key)
	buf.WriteByte('=')

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(strconv.Quote(v.String()))
	case slog.KindInt64:
		buf.WriteString(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		buf.WriteString(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		buf.WriteString(strconv.FormatFloat(v.Float64(), 'f', -1, 64))
	case slog.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case slog.KindDuration:
		buf.WriteString(v.Duration().String())
	case slog.KindTime:
		buf.WriteString(v.Time().Format(time.RFC3339))
	default:
		buf.WriteString(strconv.Quote(fmt.Sprint(v.Any())))
	}
}

func (h *LokiHandler) flushLoop() {
	defer h.loop.Done()

	ticker := time.NewTicker(h.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.mu.Lock()
			h.flushLocked()
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// flushLocked hands the buffer to a background push. Must be called with h.mu held.
func (h *LokiHandler) flushLocked() {
	if len(h.buffer) == 0 {
		return
	}

	byLevel := make(map[string][]lokiEntry)
	for _, e := range h.buffer {
		byLevel[e.level] = append(byLevel[e.level], e)
	}

	req := lokiPushRequest{Streams: make([]lokiStream, 0, len(byLevel))}
	for level, entries := range byLevel {
		labels := make(map[string]string, len(h.labels)+1)
		for k, v := range h.labels {
			labels[k] = v
		}
		labels["level"] = level

		values := make([][]string, len(entries))
		for i, e := range entries {
			values[i] = []string{strconv.FormatInt(e.timestamp.UnixNano(), 10), e.line}
		}
		req.Streams = append(req.Streams, lokiStream{Stream: labels, Values: values})
	}

	h.buffer = make([]lokiEntry, 0, h.batchSize)

	h.sends.Add(1)
	go func() {
		defer h.sends.Done()
		h.send(req)
	}()
}

// send is best effort: a diagnostics sink must not log its own failures.
func (h *LokiHandler) send(req lokiPushRequest) {
	body, err := json.Marshal(req)
	if err != nil {
		return
	}
	httpReq, err := http.NewRequest(http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}
