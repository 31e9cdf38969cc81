package router

import (
	"context"
	"testing"
)

func TestRenderHistoryOldestFirstWithAnnotations(t *testing.T) {
	ops := newFakeOps()
	// newest first, as the platform returns them
	ops.recent = []Message{
		{ID: "3", ChannelID: "c", AuthorName: "carol", Content: "thanks", ReplyToID: "2"},
		{ID: "2", ChannelID: "c", AuthorName: "bob", Content: "try another source",
			Embeds: []Embed{{Title: "Guide", Description: "Switching sources"}}},
		{ID: "1", ChannelID: "c", AuthorName: "alice", Content: "video broken"},
	}
	e := newTestEngine(ops, nil)

	got, err := e.renderHistory(context.Background(), "c")
	if err != nil {
		t.Fatal(err)
	}
	want := "alice: video broken\n" +
		"bob: try another source [Embed Content: Title: Guide, Description: Switching sources]\n" +
		"carol (replying to bob): thanks"
	if got != want {
		t.Errorf("renderHistory =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderHistoryUnresolvableReplyDropsAnnotation(t *testing.T) {
	ops := newFakeOps()
	ops.recent = []Message{
		{ID: "2", ChannelID: "c", AuthorName: "bob", Content: "replying to deleted", ReplyToID: "gone"},
	}
	e := newTestEngine(ops, nil)

	got, err := e.renderHistory(context.Background(), "c")
	if err != nil {
		t.Fatal(err)
	}
	if got != "bob: replying to deleted" {
		t.Errorf("renderHistory = %q", got)
	}
}
