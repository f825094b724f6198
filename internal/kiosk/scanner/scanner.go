package scanner

import (
	"strings"
	"time"

	"github.com/fielia/club-services/internal/membersvc/models"
)

// State of the scan aggregator. A keyboard-wedge reader is indistinguishable
// from a keyboard, so scans are reassembled from raw key events: printable
// keys accumulate in a buffer, Enter terminates a scan, and a rolling idle
// window discards stray keystrokes that were never part of one.
type State string

const (
	Waiting     State = "WAITING"
	Loading     State = "LOADING"
	Success     State = "SUCCESS"
	NotFound    State = "NOT_FOUND"
	Registering State = "REGISTERING"
	Editing     State = "EDITING"
)

type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyEscape
)

// Key is a single keyboard event fed into the machine. The caller is
// responsible for suppressing events while focus is inside a form field.
type Key struct {
	Kind KeyKind
	Rune rune
}

// DefaultIdleTimeout bounds the gap between keystrokes of one scan. A
// heuristic tunable, not a protocol constant.
const DefaultIdleTimeout = 2 * time.Second

type Config struct {
	IdleTimeout time.Duration
	Now         func() time.Time
}

// Machine is the scan aggregator. Lookup is invoked exactly once per
// terminated, non-empty scan; completion is reported back through Resolve,
// Miss and Fail.
type Machine struct {
	cfg    Config
	lookup func(uuid string)

	state       State
	buffer      strings.Builder
	lastKeyAt   time.Time
	scannedUUID string
	card        *models.Card
	formOrigin  State
}

func New(cfg Config, lookup func(uuid string)) *Machine {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Machine{
		cfg:    cfg,
		lookup: lookup,
		state:  Waiting,
	}
}

func (m *Machine) State() State        { return m.state }
func (m *Machine) ScannedUUID() string { return m.scannedUUID }
func (m *Machine) Card() *models.Card  { return m.card }
func (m *Machine) Buffer() string      { return m.buffer.String() }

// HandleKey feeds one key event through the machine.
func (m *Machine) HandleKey(k Key) {
	// Forms own the keyboard in these states, only Escape is honored.
	if m.state == NotFound || m.state == Registering || m.state == Editing {
		if k.Kind == KeyEscape {
			m.reset()
		}
		return
	}

	if m.state == Success {
		if k.Kind == KeyEscape || (k.Kind == KeyRune && k.Rune == ' ') {
			m.reset()
			return
		}
		// the reader acts as a keyboard, re-scanning from the result view
		// falls through to the buffering path below
	}

	switch k.Kind {
	case KeyEnter:
		m.expireStale()
		uuid := strings.TrimSpace(m.buffer.String())
		m.buffer.Reset()
		if uuid != "" {
			m.scannedUUID = uuid
			m.state = Loading
			m.lookup(uuid)
		}
	case KeyRune:
		m.expireStale()
		m.buffer.WriteRune(k.Rune)
		m.lastKeyAt = m.cfg.Now()
	}
}

// expireStale drops the buffer when the idle window since the last keystroke
// has passed.
func (m *Machine) expireStale() {
	if m.buffer.Len() > 0 && m.cfg.Now().Sub(m.lastKeyAt) > m.cfg.IdleTimeout {
		m.buffer.Reset()
	}
}

// Resolve reports a successful lookup, create or update.
func (m *Machine) Resolve(card *models.Card) {
	m.card = card
	if card != nil {
		m.scannedUUID = card.UUID
	}
	m.formOrigin = ""
	m.state = Success
}

// Miss reports a lookup that found no card. The scanned identifier is kept
// for the registration that usually follows.
func (m *Machine) Miss() {
	m.card = nil
	m.state = NotFound
}

// Edit moves from the result view into the edit form.
func (m *Machine) Edit() {
	if m.state == Success && m.card != nil {
		m.state = Editing
	}
}

// Cancel leaves the active form: from EDITING back to the result view, from
// NOT_FOUND back to waiting with the scanned identifier discarded.
func (m *Machine) Cancel() {
	switch m.state {
	case Editing:
		m.state = Success
	case NotFound:
		m.reset()
	}
}

// Creating marks a registration submission in flight.
func (m *Machine) Creating() {
	if m.state == NotFound {
		m.formOrigin = NotFound
		m.state = Registering
	}
}

// Updating marks an edit submission in flight.
func (m *Machine) Updating() {
	if m.state == Editing {
		m.formOrigin = Editing
		m.state = Loading
	}
}

// Fail returns a failed form submission to the form it came from, so the
// operator can correct and resubmit.
func (m *Machine) Fail() {
	if m.formOrigin != "" {
		m.state = m.formOrigin
		m.formOrigin = ""
	}
}

func (m *Machine) reset() {
	m.state = Waiting
	m.card = nil
	m.scannedUUID = ""
	m.formOrigin = ""
	m.buffer.Reset()
}
