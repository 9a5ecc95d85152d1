// internal/engine/caveats/collector.go

// Package caveats accumulates data-quality caveats and clarification
// suggestions in the order the pipeline emits them. A Collector is created
// per request and threaded through the stages explicitly; it is not shared
// between requests.
package caveats

// Collector records caveats and clarifications in deterministic order.
// Duplicate messages are suppressed so a stage can re-report a condition
// without bloating the response.
type Collector struct {
	caveats        []string
	clarifications []string
	seen           map[string]bool
}

func New() *Collector {
	return &Collector{seen: make(map[string]bool)}
}

// Caveat appends a data-quality or degradation note.
func (c *Collector) Caveat(msg string) {
	if msg == "" || c.seen["c:"+msg] {
		return
	}
	c.seen["c:"+msg] = true
	c.caveats = append(c.caveats, msg)
}

// Clarification appends a suggestion that the user supply a missing filter.
// Clarifications are kept separate from caveats: they describe the question,
// not the data.
func (c *Collector) Clarification(msg string) {
	if msg == "" || c.seen["q:"+msg] {
		return
	}
	c.seen["q:"+msg] = true
	c.clarifications = append(c.clarifications, msg)
}

// Caveats returns the accumulated caveats in emission order.
func (c *Collector) Caveats() []string {
	out := make([]string, len(c.caveats))
	copy(out, c.caveats)
	return out
}

// Clarifications returns the accumulated clarifications in emission order.
func (c *Collector) Clarifications() []string {
	out := make([]string, len(c.clarifications))
	copy(out, c.clarifications)
	return out
}
