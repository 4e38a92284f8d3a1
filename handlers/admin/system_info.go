package admin

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"moderation-bot/bot"
	"moderation-bot/utils"
)

func HandleSystemInfo(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !utils.IsDeveloper(i, b.Config.DeveloperID) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	// Get CPU info
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)

	// Get memory info
	vm, _ := mem.VirtualMemory()

	// Get host info
	hostInfo, _ := host.Info()

	var dbSize int64
	if fi, err := os.Stat(b.Config.DatabasePath); err == nil {
		dbSize = fi.Size() / 1024 / 1024 // in MB
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	activeJails := "?"
	if jails, err := b.Store.ListActiveJails(ctx); err == nil {
		activeJails = fmt.Sprintf("%d", len(jails))
	}

	embed := &discordgo.MessageEmbed{
		Title:  "System information",
		Color:  0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor · %s", time.Now().Format("15:04")),
		},
	}
	if hostInfo != nil {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "💻 OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			&discordgo.MessageEmbedField{Name: "🔧 Kernel", Value: hostInfo.KernelVersion, Inline: true},
			&discordgo.MessageEmbedField{Name: "⏳ Uptime", Value: utils.FormatDuration(time.Duration(hostInfo.Uptime) * time.Second), Inline: true},
		)
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
		&discordgo.MessageEmbedField{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
	)
	if len(cpuPercent) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", cpuPercent[0]), Inline: true})
	}
	if vm != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🧠 Memory",
			Value:  fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024),
			Inline: true,
		})
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "🗃️ Database", Value: fmt.Sprintf("%d MB", dbSize), Inline: true},
		&discordgo.MessageEmbedField{Name: "⏱️ WebSocket latency", Value: s.HeartbeatLatency().String(), Inline: true},
		&discordgo.MessageEmbedField{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
		&discordgo.MessageEmbedField{Name: "🔒 Active jails", Value: activeJails, Inline: true},
		&discordgo.MessageEmbedField{Name: "🧩 Open workflows", Value: fmt.Sprintf("%d", b.Flows.Len()), Inline: true},
	)

	if err := utils.SendEmbedResponse(s, i, true, []*discordgo.MessageEmbed{embed}, nil); err != nil {
		b.Logger.Warn("failed to send system info")
	}
}
