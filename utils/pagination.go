package utils

import (
	"github.com/bwmarrin/discordgo"
)

// PageCount returns the number of pages needed for total items, at least one.
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// PageBounds clamps page into range and returns the slice bounds for it.
func PageBounds(page, total, perPage int) (clamped, start, end int) {
	pages := PageCount(total, perPage)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start = (page - 1) * perPage
	end = start + perPage
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return page, start, end
}

// CreatePaginationComponents creates previous/next buttons. customID builds the ID for an action.
func CreatePaginationComponents(currentPage, totalPages int, customID func(action string) string) []discordgo.MessageComponent {
	if totalPages <= 1 {
		return nil
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage <= 1,
					CustomID: customID("prev"),
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage >= totalPages,
					CustomID: customID("next"),
				},
			},
		},
	}
}
