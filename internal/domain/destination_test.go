package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestDestinationValidate(t *testing.T) {
	chID := uuid.New()
	convID := uuid.New()
	parentID := uuid.New()

	valid := []Destination{
		ChannelDestination(chID),
		ConversationDestination(convID),
		ThreadDestination(parentID),
	}
	for _, d := range valid {
		if err := d.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", d, err)
		}
	}

	invalid := []Destination{
		{},
		{ChannelID: &chID, ConversationID: &convID},
		{ChannelID: &chID, ParentMessageID: &parentID},
		{ChannelID: &chID, ConversationID: &convID, ParentMessageID: &parentID},
	}
	for _, d := range invalid {
		if err := d.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", d)
		}
	}
}

func TestDestinationMatches(t *testing.T) {
	chID := uuid.New()
	rootID := uuid.New()

	top := &Message{ChannelID: &chID}
	reply := &Message{ChannelID: &chID, ParentMessageID: &rootID}

	channel := ChannelDestination(chID)
	if !channel.Matches(top) {
		t.Error("channel feed should include top-level messages")
	}
	if channel.Matches(reply) {
		t.Error("channel feed must not include thread replies")
	}

	thread := ThreadDestination(rootID)
	if thread.Matches(top) {
		t.Error("thread feed must not include top-level messages")
	}
	if !thread.Matches(reply) {
		t.Error("thread feed should include the root's replies")
	}

	other := ThreadDestination(uuid.New())
	if other.Matches(reply) {
		t.Error("reply must not match a different thread root")
	}
}
