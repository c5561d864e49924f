package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NikitaCOEUR/autocomplete/internal/cache"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders the overview to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(renderHeader(data))
	b.WriteString("\n")

	b.WriteString(renderEngine(data))
	b.WriteString("\n")

	b.WriteString(renderStores(data))

	if data.Cache != nil {
		b.WriteString("\n\n")
		b.WriteString(renderCache(data.Cache))
	}

	return b.String()
}

func renderHeader(data *Data) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📦 Version: ") + valueStyle.Render(data.Version) + "\n")

	source := data.ConfigSource
	if data.IsDefaults {
		source = "embedded defaults"
	}
	b.WriteString(titleStyle.Render("📝 Configuration: ") + valueStyle.Render(source))
	if data.ConfigHash != "" {
		b.WriteString("\n" + keyStyle.Render("   sha256: ") + subtleStyle.Render(truncateString(data.ConfigHash, 16)))
	}
	return b.String()
}

func renderEngine(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("⚙️  Engine:") + "\n")
	b.WriteString("   " + keyStyle.Render("Max visible options: ") + valueStyle.Render(fmt.Sprintf("%d", data.MaxVisibleOptions)) + "\n")
	b.WriteString("   " + keyStyle.Render("Count threshold: ") + valueStyle.Render(fmt.Sprintf("%d", data.CountThreshold)))
	return b.String()
}

func renderStores(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🔤 Stores:") + "\n")

	if len(data.Stores) == 0 {
		b.WriteString("   " + subtleStyle.Render("No stores configured"))
		return b.String()
	}

	for i, s := range data.Stores {
		b.WriteString(fmt.Sprintf("   %d. %s %s\n",
			i+1,
			valueStyle.Render(s.Name),
			subtleStyle.Render("("+s.Kind+")")))

		b.WriteString("      " + keyStyle.Render("Targets: ") + valueStyle.Render(strings.Join(s.Targets, ", ")) + "\n")
		b.WriteString("      " + keyStyle.Render("Candidates: ") + valueStyle.Render(fmt.Sprintf("%d", s.Total())) + "\n")

		if s.Sentinel != "" {
			b.WriteString("      " + keyStyle.Render("Sentinel: ") + valueStyle.Render(s.Sentinel) + "\n")
		}
		if s.Avoid > 0 {
			b.WriteString("      " + keyStyle.Render("Avoided: ") + valueStyle.Render(fmt.Sprintf("%d", s.Avoid)) + "\n")
		}

		b.WriteString("      " + keyStyle.Render("Comma completes: ") + flag(s.CommaCompletes) +
			"  " + keyStyle.Render("Autoselect first row: ") + flag(s.AutoselectFirstRow) + "\n")

		if s.Dictionary != "" {
			b.WriteString("      " + keyStyle.Render("Dictionary: ") + subtleStyle.Render(s.Dictionary))
			if s.DictionaryError != "" {
				b.WriteString(" " + errorStyle.Render("✗ "+s.DictionaryError))
			} else {
				b.WriteString(" " + successStyle.Render("✓") + subtleStyle.Render(fmt.Sprintf(" %d entries, %s", s.DictionaryEntries, formatBytes(s.DictionarySize))))
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderCache(info *cache.Info) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("💾 Dictionary cache:") + "\n")
	b.WriteString("   " + keyStyle.Render("Location: ") + subtleStyle.Render(info.Dir) + "\n")
	b.WriteString("   " + keyStyle.Render("Entries: ") + valueStyle.Render(fmt.Sprintf("%d", info.TotalEntries)) +
		"  " + keyStyle.Render("Size: ") + valueStyle.Render(formatBytes(info.Size)))
	return b.String()
}

func flag(v bool) string {
	if v {
		return successStyle.Render("yes")
	}
	return subtleStyle.Render("no")
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
