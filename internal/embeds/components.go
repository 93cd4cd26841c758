package embeds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PagerPrefix starts every pager button's custom ID. The button name and the
// target page number follow it, so routing needs no per-message state.
const PagerPrefix = "pager:"

func pagerCustomID(name string, page int) string {
	return fmt.Sprintf("%s%s:%d", PagerPrefix, name, page)
}

// PagerTargetPage extracts the target page from a pager button's custom ID.
func PagerTargetPage(customID string) (int, error) {
	idx := strings.LastIndex(customID, ":")
	if idx < 0 {
		return 0, fmt.Errorf("malformed pager custom ID %q", customID)
	}

	page, err := strconv.Atoi(customID[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed pager custom ID %q: %w", customID, err)
	}

	return page, nil
}

// PagerButtons returns the navigation row for a paged embed. Buttons that
// would leave the valid page range come back disabled.
func PagerButtons(pageNum int, totalPages int) []discordgo.MessageComponent {
	atFirst := pageNum <= 1
	atLast := pageNum >= totalPages

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Disabled: atFirst,
					CustomID: pagerCustomID("first", 1),
					Label:    "|<",
					Style:    discordgo.SuccessButton,
				},
				discordgo.Button{
					Disabled: atFirst,
					CustomID: pagerCustomID("prev", pageNum-1),
					Label:    "<",
					Style:    discordgo.PrimaryButton,
				},
				discordgo.Button{
					Disabled: atLast,
					CustomID: pagerCustomID("next", pageNum+1),
					Label:    ">",
					Style:    discordgo.PrimaryButton,
				},
				discordgo.Button{
					Disabled: atLast,
					CustomID: pagerCustomID("last", totalPages),
					Label:    ">|",
					Style:    discordgo.SuccessButton,
				},
			},
		},
	}
}
