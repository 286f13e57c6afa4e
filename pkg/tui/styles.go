package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	face, light, shadow, title, titleText, desk, text lipgloss.Color
}

var palettes = map[string]palette{
	"win95":         {"#c0c0c0", "#ffffff", "#808080", "#000080", "#ffffff", "#008080", "#000000"},
	"dark":          {"#3a3a3a", "#5a5a5a", "#1a1a1a", "#202060", "#ffffff", "#102828", "#e0e0e0"},
	"high-contrast": {"#000000", "#ffffff", "#ffffff", "#800080", "#ffffff", "#000000", "#ffffff"},
}

// Styles holds the lipgloss styles of one desktop theme.
type Styles struct {
	theme string

	Desktop      lipgloss.Style
	Icon         lipgloss.Style
	IconSelected lipgloss.Style

	Window        lipgloss.Style
	TitleActive   lipgloss.Style
	TitleInactive lipgloss.Style
	Body          lipgloss.Style

	Taskbar       lipgloss.Style
	TaskButton    lipgloss.Style
	TaskActive    lipgloss.Style
	TaskMinimized lipgloss.Style
	Start         lipgloss.Style
	StartOpen     lipgloss.Style
	Clock         lipgloss.Style

	Menu         lipgloss.Style
	MenuItem     lipgloss.Style
	MenuSelected lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	Subtle       lipgloss.Style
	Placeholder  lipgloss.Style
	Status       lipgloss.Style
	Terminal     lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
}

// NewStyles builds the styles for a theme name, falling back to win95.
func NewStyles(theme string) Styles {
	p, ok := palettes[theme]
	if !ok {
		theme = "win95"
		p = palettes[theme]
	}

	button := lipgloss.NewStyle().Background(p.face).Foreground(p.text).Padding(0, 1)
	return Styles{
		theme: theme,

		Desktop:      lipgloss.NewStyle().Foreground(p.titleText),
		Icon:         lipgloss.NewStyle().Foreground(p.titleText).Padding(0, 1),
		IconSelected: lipgloss.NewStyle().Background(p.title).Foreground(p.titleText).Padding(0, 1),

		Window:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.light),
		TitleActive:   lipgloss.NewStyle().Bold(true).Background(p.title).Foreground(p.titleText),
		TitleInactive: lipgloss.NewStyle().Bold(true).Background(p.shadow).Foreground(p.face),
		Body:          lipgloss.NewStyle(),

		Taskbar:       lipgloss.NewStyle().Background(p.face).Foreground(p.text),
		TaskButton:    button,
		TaskActive:    button.Bold(true).Underline(true),
		TaskMinimized: button.Foreground(p.shadow),
		Start:         button.Bold(true),
		StartOpen:     button.Bold(true).Reverse(true),
		Clock:         button,

		Menu:         lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.light).Background(p.face),
		MenuItem:     lipgloss.NewStyle().Foreground(p.text).Padding(0, 1),
		MenuSelected: lipgloss.NewStyle().Background(p.title).Foreground(p.titleText).Padding(0, 1),

		ListItem:     lipgloss.NewStyle(),
		ListSelected: lipgloss.NewStyle().Reverse(true),
		Subtle:       lipgloss.NewStyle().Foreground(p.shadow),
		Placeholder:  lipgloss.NewStyle().Italic(true),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")),
		Terminal:     lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c0c0")),
		HelpKey:      lipgloss.NewStyle().Bold(true),
		HelpDesc:     lipgloss.NewStyle().Foreground(p.shadow),
	}
}
