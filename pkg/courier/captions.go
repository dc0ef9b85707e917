package courier

import (
	"fmt"

	"github.com/imbecility/yt-courier/pkg/models"
)

// headerCaption is the linked title+author block that prefixes every
// message about one video.
func headerCaption(m *models.SourceMedia) string {
	videoLine := fmt.Sprintf("📹 [%s](%s)", EscapeMarkdown(m.Title), EscapeMarkdown(m.WatchURL))
	authorLine := fmt.Sprintf("👤 [%s](%s)", EscapeMarkdown(m.Author), EscapeMarkdown(m.ChannelURL))
	return videoLine + "\n\n" + authorLine + "\n"
}

func optionsCaption(m *models.SourceMedia) string {
	return headerCaption(m) + "\nSelect a format for downloading ↓"
}

func progressCaption(m *models.SourceMedia, stage string) string {
	return headerCaption(m) + "\n" + stage
}

const (
	stageDownloading = "📥 Downloading\\.\\.\\."
	stageMerging     = "📦 Merging\\.\\.\\."
	stageUploading   = "📤 Uploading\\.\\.\\."
)

// successCaption is the final caption attached to the uploaded file: the
// header plus one technical line.
func successCaption(m *models.SourceMedia, opt models.StreamOption) string {
	switch opt.Kind {
	case models.KindVideo:
		return headerCaption(m) + fmt.Sprintf("\n📹 %s/%dfps", opt.Resolution, opt.FPS)
	case models.KindAudio:
		return headerCaption(m) + "\n🔊 " + opt.Bitrate
	}
	return headerCaption(m)
}

func sizeRejectedText(m *models.SourceMedia, limitMB int) string {
	return headerCaption(m) + fmt.Sprintf("\n🛑 Cannot send the file \\(%d Mb limit\\)", limitMB)
}

func downloadFailedText(m *models.SourceMedia) string {
	return headerCaption(m) + "\n🛑 Download failed\\."
}

func uploadFailedText(m *models.SourceMedia, kind models.StreamKind) string {
	if kind == models.KindAudio {
		return headerCaption(m) + "\n🛑 Could not send the audio file"
	}
	return headerCaption(m) + "\n🛑 Could not send the video file"
}

func greetingText(firstName string) string {
	return fmt.Sprintf(
		"👋 Hi %s\\. Send me a YouTube video link and I'll download that video or audio\\.",
		EscapeMarkdown(firstName))
}

func ageRestrictedText(link string) string {
	return fmt.Sprintf("🚫 [This video](%s) is age restricted\\.", EscapeMarkdown(link))
}

func fetchFailedText(link string) string {
	return fmt.Sprintf("🚫 An error occured while fetching [this video](%s)\\.", EscapeMarkdown(link))
}

const sendLinkText = "🔗 Send me a YouTube video link"
