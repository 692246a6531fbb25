package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestTextList(t *testing.T) {
	assert.Equal(t, "", TextList(nil, "and"))
	assert.Equal(t, "title", TextList([]string{"title"}, "and"))
	assert.Equal(t, "title and status", TextList([]string{"title", "status"}, "and"))
	assert.Equal(t, "a, b or c", TextList([]string{"a", "b", "c"}, "or"))
}

func TestChangeSummary(t *testing.T) {
	tests := []struct {
		name     string
		messages []ChangeMessage
		want     string
	}{
		{
			name:     "empty change",
			messages: nil,
			want:     "No fields changed.",
		},
		{
			name:     "addition",
			messages: []ChangeMessage{{Added: &ChangeDetail{}}},
			want:     "Added.",
		},
		{
			name:     "changed fields",
			messages: []ChangeMessage{{Changed: &ChangeDetail{Fields: []string{"标题", "状态"}}}},
			want:     "Changed 标题 and 状态.",
		},
		{
			name: "inline objects",
			messages: []ChangeMessage{
				{Added: &ChangeDetail{Name: "文章", Object: "Hello"}},
				{Changed: &ChangeDetail{Name: "文章", Object: "World", Fields: []string{"摘要"}}},
				{Deleted: &ChangeDetail{Name: "文章", Object: "Bye"}},
			},
			want: "Added 文章 “Hello”. Changed 摘要 for 文章 “World”. Deleted 文章 “Bye”.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := LogEntry{ActionFlag: LogActionChange, ChangeMessage: EncodeChangeMessage(tt.messages)}
			assert.Equal(t, tt.want, entry.ChangeSummary())
		})
	}
}

func TestChangeSummaryKeepsPlainText(t *testing.T) {
	entry := LogEntry{ChangeMessage: datatypes.JSON("imported from the old blog")}
	assert.Equal(t, "imported from the old blog", entry.ChangeSummary())

	assert.Empty(t, LogEntry{}.ChangeSummary())
}

func TestLogEntryString(t *testing.T) {
	assert.Equal(t, "Added “Go”.", LogEntry{ActionFlag: LogActionAddition, ObjectRepr: "Go"}.String())
	assert.Equal(t, "Deleted “Go.”", LogEntry{ActionFlag: LogActionDeletion, ObjectRepr: "Go"}.String())
	assert.Equal(t, "Changed “Go” - No fields changed.", LogEntry{
		ActionFlag:    LogActionChange,
		ObjectRepr:    "Go",
		ChangeMessage: EncodeChangeMessage(nil),
	}.String())
	assert.Equal(t, "Deletion", LogEntry{ActionFlag: LogActionDeletion}.ActionLabel())
}
