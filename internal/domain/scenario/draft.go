package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned by Draft operations given an index
	// that does not address an existing message or reply.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrLastReply is returned when removing the only remaining reply of a
	// message, which would leave Correct without a valid target.
	ErrLastReply = errors.New("cannot remove the last reply of a message")
)

// Draft is the editable in-memory form of a Document. Every operation keeps
// 0 <= Correct < len(Replies) for every message. The draft itself allows the
// message list to become empty; the editor session refuses that.
type Draft struct {
	Name     string
	Messages []Message
}

// NewDraft returns a draft holding one empty message with one empty reply.
func NewDraft() *Draft {
	return &Draft{Messages: []Message{emptyMessage()}}
}

// DraftFrom copies doc into a new draft. Messages without replies get one
// empty reply and an out-of-range correct index is reset to 0, so every
// message satisfies 0 <= Correct < len(Replies).
func DraftFrom(doc *Document) *Draft {
	c := doc.Clone()
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	for i := range c.Messages {
		m := &c.Messages[i]
		if len(m.Replies) == 0 {
			m.Replies = []string{""}
		}
		if m.Correct < 0 || m.Correct >= len(m.Replies) {
			m.Correct = 0
		}
	}
	return &Draft{Name: c.Name, Messages: c.Messages}
}

// Document returns a copy of the draft as a current-version document.
func (d *Draft) Document() *Document {
	doc := &Document{Version: SchemaVersion, Name: d.Name, Messages: d.Messages}
	return doc.Clone()
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	return DraftFrom(&Document{Name: d.Name, Messages: d.Messages})
}

func emptyMessage() Message {
	return Message{Text: "", Replies: []string{""}, Correct: 0}
}

// AddMessage appends an empty message.
func (d *Draft) AddMessage() {
	d.Messages = append(d.Messages, emptyMessage())
}

// RemoveMessage removes the message at index.
func (d *Draft) RemoveMessage(index int) error {
	if err := d.checkMessage(index); err != nil {
		return err
	}
	d.Messages = append(d.Messages[:index], d.Messages[index+1:]...)
	return nil
}

// SetMessageText replaces the text of the message at index.
func (d *Draft) SetMessageText(index int, text string) error {
	if err := d.checkMessage(index); err != nil {
		return err
	}
	d.Messages[index].Text = text
	return nil
}

// AddReply appends an empty reply to the message. Correct is unchanged.
func (d *Draft) AddReply(messageIndex int) error {
	if err := d.checkMessage(messageIndex); err != nil {
		return err
	}
	m := &d.Messages[messageIndex]
	m.Replies = append(m.Replies, "")
	return nil
}

// RemoveReply removes a reply and re-derives Correct: removing the correct
// reply resets Correct to 0, removing one before it shifts Correct down by
// one, removing one after it leaves Correct alone.
func (d *Draft) RemoveReply(messageIndex, replyIndex int) error {
	if err := d.checkReply(messageIndex, replyIndex); err != nil {
		return err
	}
	m := &d.Messages[messageIndex]
	if len(m.Replies) == 1 {
		return ErrLastReply
	}

	m.Replies = append(m.Replies[:replyIndex], m.Replies[replyIndex+1:]...)
	switch {
	case replyIndex == m.Correct:
		m.Correct = 0
	case replyIndex < m.Correct:
		m.Correct--
	}
	return nil
}

// SetCorrect marks the reply at replyIndex as the correct one.
func (d *Draft) SetCorrect(messageIndex, replyIndex int) error {
	if err := d.checkReply(messageIndex, replyIndex); err != nil {
		return err
	}
	d.Messages[messageIndex].Correct = replyIndex
	return nil
}

// SetReplyText replaces the text of a reply.
func (d *Draft) SetReplyText(messageIndex, replyIndex int, text string) error {
	if err := d.checkReply(messageIndex, replyIndex); err != nil {
		return err
	}
	d.Messages[messageIndex].Replies[replyIndex] = text
	return nil
}

func (d *Draft) checkMessage(index int) error {
	if index < 0 || index >= len(d.Messages) {
		return fmt.Errorf("message %d of %d: %w", index, len(d.Messages), ErrIndexOutOfRange)
	}
	return nil
}

func (d *Draft) checkReply(messageIndex, replyIndex int) error {
	if err := d.checkMessage(messageIndex); err != nil {
		return err
	}
	n := len(d.Messages[messageIndex].Replies)
	if replyIndex < 0 || replyIndex >= n {
		return fmt.Errorf("reply %d of %d in message %d: %w", replyIndex, n, messageIndex, ErrIndexOutOfRange)
	}
	return nil
}
