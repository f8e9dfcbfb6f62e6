package dom

import "golang.org/x/net/html"

// MutationType identifies the kind of change a record describes
type MutationType int

const (
	// ChildList records nodes added to or removed from a parent
	ChildList MutationType = iota
	// CharacterData records a change to a text node's contents
	CharacterData
)

func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case CharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// MutationRecord describes a single change to the document
type MutationRecord struct {
	Type         MutationType
	Target       *html.Node
	AddedNodes   []*html.Node
	RemovedNodes []*html.Node
}

// Options selects which changes an observer receives
type Options struct {
	ChildList     bool
	CharacterData bool
	Subtree       bool
}

// Callback receives one batch of records
type Callback func(records []MutationRecord, observer *Observer)

// Observer receives mutation records for a subtree of a Document
type Observer struct {
	doc      *Document
	root     *html.Node
	opts     Options
	callback Callback
	pending  []MutationRecord
	active   bool
}

// Observe registers callback for changes under root
func (d *Document) Observe(root *html.Node, opts Options, callback Callback) *Observer {
	o := &Observer{
		doc:      d,
		root:     root,
		opts:     opts,
		callback: callback,
		active:   true,
	}
	d.observers = append(d.observers, o)
	return o
}

// Disconnect stops delivery and discards queued records
func (o *Observer) Disconnect() {
	if !o.active {
		return
	}
	o.active = false
	o.pending = nil
	o.doc.removeObserver(o)
}

// TakeRecords returns and clears the queued records
func (o *Observer) TakeRecords() []MutationRecord {
	records := o.pending
	o.pending = nil
	return records
}

// Active reports whether the observer is still connected
func (o *Observer) Active() bool {
	return o.active
}

func (o *Observer) wants(rec MutationRecord) bool {
	if !o.active {
		return false
	}
	switch rec.Type {
	case ChildList:
		if !o.opts.ChildList {
			return false
		}
	case CharacterData:
		if !o.opts.CharacterData {
			return false
		}
	}
	if rec.Target == o.root {
		return true
	}
	return o.opts.Subtree && Contains(o.root, rec.Target)
}
