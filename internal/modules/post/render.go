// Package post renders a blog post draft into the fixed HTML layout used
// on the blog: optional cover image, caption, styled watch buttons and
// footer links.
package post

import (
	"fmt"
	"html"
	"strings"
)

// Draft is the transient input to Render. It carries no behavior and is
// never persisted.
type Draft struct {
	Title    string
	ImageURL string
	Caption  string
	Links    []string
}

// FooterLinks are the optional static buttons at the bottom of every post.
// Each is rendered only when its URL is configured.
type FooterLinks struct {
	ChannelURL string
	BackupURL  string
}

const styleBlock = `<style>
.post-image { width: 100%; max-width: 640px; border-radius: 8px; display: block; margin: 0 auto 16px; }
.post-caption { font-size: 16px; line-height: 1.6; margin-bottom: 20px; }
.watch-btn { display: block; background: #e53935; color: #fff; text-align: center; padding: 14px 0; margin: 10px 0; border-radius: 6px; font-weight: bold; text-decoration: none; }
.watch-btn:hover { background: #c62828; }
.footer-btn { display: inline-block; background: #1e88e5; color: #fff; padding: 10px 24px; margin: 16px 8px 0 0; border-radius: 6px; text-decoration: none; }
</style>`

// Render builds the post HTML. It is pure: same inputs, same output.
func Render(d Draft, footer FooterLinks) string {
	var b strings.Builder
	b.WriteString(styleBlock)
	b.WriteString("\n")

	if d.ImageURL != "" {
		fmt.Fprintf(&b, `<img class="post-image" src="%s" alt="%s">`,
			html.EscapeString(d.ImageURL), html.EscapeString(d.Title))
		b.WriteString("\n")
	}

	if d.Caption != "" {
		caption := strings.ReplaceAll(html.EscapeString(d.Caption), "\n", "<br>")
		fmt.Fprintf(&b, `<p class="post-caption">%s</p>`, caption)
		b.WriteString("\n")
	}

	switch len(d.Links) {
	case 0:
	case 1:
		writeWatchButton(&b, d.Links[0], "Watch Video")
	default:
		for i, link := range d.Links {
			writeWatchButton(&b, link, fmt.Sprintf("Watch Video %d", i+1))
		}
	}

	if footer.ChannelURL != "" {
		writeFooterButton(&b, footer.ChannelURL, "Join Our Channel")
	}
	if footer.BackupURL != "" {
		writeFooterButton(&b, footer.BackupURL, "Backup Channel")
	}

	return b.String()
}

func writeWatchButton(b *strings.Builder, url, label string) {
	fmt.Fprintf(b, `<a class="watch-btn" href="%s" target="_blank" rel="noopener">▶ %s</a>`,
		html.EscapeString(url), label)
	b.WriteString("\n")
}

func writeFooterButton(b *strings.Builder, url, label string) {
	fmt.Fprintf(b, `<a class="footer-btn" href="%s" target="_blank" rel="noopener">%s</a>`,
		html.EscapeString(url), label)
	b.WriteString("\n")
}
