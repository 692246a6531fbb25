package models

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/datatypes"
)

type LogAction = uint8

const (
	LogActionAddition = LogAction(iota + 1)
	LogActionChange
	LogActionDeletion
)

// LogEntry is an append-only record of a change made through an admin site.
type LogEntry struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ActionTime    time.Time      `json:"action_time" gorm:"autoCreateTime;index"`
	UserID        uint           `json:"user_id"`
	User          Account        `json:"user" validate:"-"`
	ContentType   string         `json:"content_type" gorm:"size:100;index"`
	ObjectID      string         `json:"object_id"`
	ObjectRepr    string         `json:"object_repr" gorm:"size:200"`
	ActionFlag    LogAction      `json:"action_flag"`
	ChangeMessage datatypes.JSON `json:"change_message"`
}

func (v LogEntry) GetID() uint {
	return v.ID
}

func (v LogEntry) String() string {
	switch v.ActionFlag {
	case LogActionAddition:
		return fmt.Sprintf("Added “%s”.", v.ObjectRepr)
	case LogActionChange:
		return fmt.Sprintf("Changed “%s” - %s", v.ObjectRepr, v.ChangeSummary())
	case LogActionDeletion:
		return fmt.Sprintf("Deleted “%s.”", v.ObjectRepr)
	default:
		return "LogEntry Object"
	}
}

func (v LogEntry) ActionLabel() string {
	switch v.ActionFlag {
	case LogActionAddition:
		return "Addition"
	case LogActionChange:
		return "Change"
	case LogActionDeletion:
		return "Deletion"
	default:
		return "Unknown"
	}
}

type ChangeDetail struct {
	Name   string   `json:"name,omitempty"`
	Object string   `json:"object,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

type ChangeMessage struct {
	Added   *ChangeDetail `json:"added,omitempty"`
	Changed *ChangeDetail `json:"changed,omitempty"`
	Deleted *ChangeDetail `json:"deleted,omitempty"`
}

func EncodeChangeMessage(messages []ChangeMessage) datatypes.JSON {
	if len(messages) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := jsoniter.Marshal(messages)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return raw
}

// ChangeSummary renders the structured change message as a sentence.
// Messages that are not structured are returned as is.
func (v LogEntry) ChangeSummary() string {
	if len(v.ChangeMessage) == 0 {
		return ""
	}

	var messages []ChangeMessage
	if err := jsoniter.Unmarshal(v.ChangeMessage, &messages); err != nil {
		return string(v.ChangeMessage)
	}

	var out []string
	for _, msg := range messages {
		switch {
		case msg.Added != nil:
			if msg.Added.Name != "" {
				out = append(out, fmt.Sprintf("Added %s “%s”.", msg.Added.Name, msg.Added.Object))
			} else {
				out = append(out, "Added.")
			}
		case msg.Changed != nil:
			fields := TextList(msg.Changed.Fields, "and")
			if msg.Changed.Name != "" {
				out = append(out, fmt.Sprintf("Changed %s for %s “%s”.", fields, msg.Changed.Name, msg.Changed.Object))
			} else {
				out = append(out, fmt.Sprintf("Changed %s.", fields))
			}
		case msg.Deleted != nil:
			if msg.Deleted.Name != "" {
				out = append(out, fmt.Sprintf("Deleted %s “%s”.", msg.Deleted.Name, msg.Deleted.Object))
			} else {
				out = append(out, "Deleted.")
			}
		}
	}

	if len(out) == 0 {
		return "No fields changed."
	}
	return strings.Join(out, " ")
}

// TextList joins items as "a, b and c".
func TextList(items []string, last string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return fmt.Sprintf("%s %s %s", strings.Join(items[:len(items)-1], ", "), last, items[len(items)-1])
	}
}
