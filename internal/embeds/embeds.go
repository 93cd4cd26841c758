package embeds

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func ErrorMessageEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ **Something went wrong**",
		Description: msg,
		Color:       0x992D22,
	}
}

func ListEmbed(title string, lines []string, pageNum int, totalPages int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       0x5865F2,
	}

	if totalPages > 1 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d", pageNum, totalPages),
		}
	}

	return embed
}

func QuoteEmbed(msg *discordgo.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: msg.Content,
		Color:       0x5865F2,
		Timestamp:   msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}

	if msg.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    msg.Author.Username,
			IconURL: msg.Author.AvatarURL(""),
		}
	}

	return embed
}
