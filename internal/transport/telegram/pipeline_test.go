package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
)

func channelPost(chatID int64, caption string, withPhoto bool) *models.Message {
	msg := &models.Message{
		ID:      10,
		Caption: caption,
		Chat:    models.Chat{ID: chatID, Type: "channel", Title: "Movies Channel"},
	}
	if withPhoto {
		msg.Photo = []models.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 720},
		}
	}
	return msg
}

func TestPipelinePublishesValidPost(t *testing.T) {
	env := newTestEnv(t)

	post := channelPost(-100123, "Great Movie\nWatch Online 👇\nhttps://terabox.com/s/abc", true)
	env.handler.processChannelPost(context.Background(), env.bot, post)

	titles := env.blog.titles()
	if len(titles) != 1 || titles[0] != "Great Movie" {
		t.Fatalf("published titles = %v, want [Great Movie]", titles)
	}
	if !strings.Contains(env.blog.lastBody, "https://terabox.com/s/abc") {
		t.Error("post body should contain the allowlisted link")
	}
	if strings.Contains(env.blog.lastBody, "Watch Online") {
		t.Error("junk phrases must be stripped from the published caption")
	}
}

func TestPipelineRejectsUnknownChannel(t *testing.T) {
	env := newTestEnv(t)

	post := channelPost(-100999, "https://terabox.com/s/abc", true)
	env.handler.processChannelPost(context.Background(), env.bot, post)

	if got := env.blog.titles(); len(got) != 0 {
		t.Fatalf("non-source channel post was published: %v", got)
	}
	if env.api.downloadCount() != 0 {
		t.Error("no media should be downloaded for a rejected post")
	}
}

func TestPipelineRejectsPostWithoutMedia(t *testing.T) {
	env := newTestEnv(t)

	post := channelPost(-100123, "caption https://terabox.com/s/abc", false)
	env.handler.processChannelPost(context.Background(), env.bot, post)

	if got := env.blog.titles(); len(got) != 0 {
		t.Fatalf("post without media was published: %v", got)
	}
}

func TestPipelineRejectsPostWithoutLinks(t *testing.T) {
	env := newTestEnv(t)

	post := channelPost(-100123, "a caption with no links at all", true)
	env.handler.processChannelPost(context.Background(), env.bot, post)

	if got := env.blog.titles(); len(got) != 0 {
		t.Fatalf("post without links was published: %v", got)
	}
}

func TestPipelineRejectsNonAllowlistedDomain(t *testing.T) {
	env := newTestEnv(t)

	post := channelPost(-100123, "look https://example.com/x", true)
	env.handler.processChannelPost(context.Background(), env.bot, post)

	if got := env.blog.titles(); len(got) != 0 {
		t.Fatalf("post with non-allowlisted link was published: %v", got)
	}
	if env.api.downloadCount() != 0 {
		t.Error("media download must not happen for a rejected post")
	}
}

func TestPipelineUsesFallbackTitle(t *testing.T) {
	env := newTestEnv(t)

	// Caption cleans down to nothing but the link passes
	post := channelPost(-100123, "watch online 👇\nhttps://terabox.com/s/abc", true)
	env.handler.processChannelPost(context.Background(), env.bot, post)

	titles := env.blog.titles()
	if len(titles) != 1 || titles[0] != "New Video Post" {
		t.Fatalf("published titles = %v, want [New Video Post]", titles)
	}
}

func TestPipelineVideoUsesThumbnail(t *testing.T) {
	env := newTestEnv(t)

	post := &models.Message{
		ID:      11,
		Caption: "Clip https://terabox.com/s/v",
		Chat:    models.Chat{ID: -100123, Type: "channel"},
		Video: &models.Video{
			FileID:    "vid",
			Thumbnail: &models.PhotoSize{FileID: "thumb"},
		},
	}
	env.handler.processChannelPost(context.Background(), env.bot, post)

	if got := env.blog.titles(); len(got) != 1 {
		t.Fatalf("video post was not published: %v", got)
	}
	if env.api.downloadCount() != 1 {
		t.Errorf("downloads = %d, want 1 (the thumbnail)", env.api.downloadCount())
	}
}
