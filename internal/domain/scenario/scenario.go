package scenario

import (
	"regexp"
	"strings"
)

// SchemaVersion is the document shape this build reads and writes.
// Documents written before the version field existed decode as version 0.
const SchemaVersion = 1

// KeyExtension is the suffix every storage key carries.
const KeyExtension = ".json"

// Document is a persisted conversation scenario.
type Document struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Messages []Message `json:"messages"`
}

// Message is one prompt in a scenario together with its candidate replies.
// Correct is a zero-based index into Replies.
type Message struct {
	Text    string   `json:"text"`
	Replies []string `json:"replies"`
	Correct int      `json:"correct"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Version: d.Version, Name: d.Name}
	if d.Messages != nil {
		out.Messages = make([]Message, len(d.Messages))
		for i, m := range d.Messages {
			out.Messages[i] = m.clone()
		}
	}
	return out
}

func (m Message) clone() Message {
	replies := make([]string, len(m.Replies))
	copy(replies, m.Replies)
	return Message{Text: m.Text, Replies: replies, Correct: m.Correct}
}

// Validate checks the structural invariants of a saveable document.
// Message and reply text may be empty.
func (d *Document) Validate() error {
	if len(d.Messages) == 0 {
		return Errorf(KindInvalidRequest, "scenario must contain at least one message")
	}
	for i, m := range d.Messages {
		if len(m.Replies) == 0 {
			return Errorf(KindInvalidRequest, "message %d must have at least one reply", i)
		}
		if m.Correct < 0 || m.Correct >= len(m.Replies) {
			return Errorf(KindInvalidRequest, "message %d: correct index %d out of range [0,%d)", i, m.Correct, len(m.Replies))
		}
	}
	return nil
}

// Migrate upgrades a decoded document to SchemaVersion in place.
func Migrate(d *Document) error {
	switch {
	case d.Version < 0:
		return Errorf(KindMalformedDocument, "invalid schema version %d", d.Version)
	case d.Version > SchemaVersion:
		return Errorf(KindMalformedDocument, "unsupported schema version %d (newest known is %d)", d.Version, SchemaVersion)
	}

	if d.Version == 0 {
		migrateV0(d)
	}
	return nil
}

// migrateV0 upgrades documents written by the original panel, which had no
// version field and did not guard reply lists.
func migrateV0(d *Document) {
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	for i := range d.Messages {
		m := &d.Messages[i]
		if len(m.Replies) == 0 {
			m.Replies = []string{""}
		}
		if m.Correct < 0 || m.Correct >= len(m.Replies) {
			m.Correct = 0
		}
	}
	d.Version = 1
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// KeyFromName derives the storage key for a new scenario: surrounding
// whitespace trimmed, inner whitespace runs collapsed to "_", ".json" appended.
func KeyFromName(name string) (string, error) {
	stem := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	if stem == "" {
		return "", Errorf(KindInvalidRequest, "scenario name is required")
	}
	key := stem + KeyExtension
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// ValidateKey reports whether key is usable as a storage key: a bare
// filename with a non-empty stem and the .json extension.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return Errorf(KindInvalidRequest, "filename is required")
	case !strings.HasSuffix(key, KeyExtension) || len(key) == len(KeyExtension):
		return Errorf(KindInvalidRequest, "filename %q must end in %s", key, KeyExtension)
	case strings.ContainsAny(key, `/\`) || strings.Contains(key, ".."):
		return Errorf(KindInvalidRequest, "filename %q must not contain path elements", key)
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return Errorf(KindInvalidRequest, "filename %q contains control characters", key)
		}
	}
	return nil
}

// IsKey reports whether a directory entry name looks like a scenario file.
func IsKey(name string) bool {
	return ValidateKey(name) == nil
}
