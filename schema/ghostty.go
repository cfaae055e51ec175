package schema

// Ghostty is the built-in schema for the Ghostty terminal config.
var Ghostty = MustNew(
	Group{Name: "Appearance", Sections: []Section{
		{Name: "Fonts", Fields: []Field{
			{Key: "font-family", Label: "Font Family", Kind: KindText, Default: String(""),
				Doc: "Primary font family used to render terminal text."},
			{Key: "font-family-bold", Label: "Bold Font Family", Kind: KindText, Default: String(""),
				Doc: "Optional bold variant. If unset, Ghostty may synthesize bold text."},
			{Key: "font-family-italic", Label: "Italic Font Family", Kind: KindText, Default: String(""),
				Doc: "Optional italic font family."},
			{Key: "font-family-bold-italic", Label: "Bold Italic Font Family", Kind: KindText, Default: String(""),
				Doc: "Optional font family for text that is both bold and italic."},
			{Key: "font-size", Label: "Font Size", Kind: KindNumber, Default: Number(13),
				Doc: "Base font size in points."},
			{Key: "font-synthetic-style", Label: "Synthetic Font Style", Kind: KindEnum, Default: String("auto"),
				Options: []string{"auto", "none", "bold", "italic", "bold-italic"},
				Doc:     "Whether bold/italic styles are synthesized when the font lacks them."},
			{Key: "adjust-cell-width", Label: "Cell Width Adjustment", Kind: KindNumber, Default: Number(1),
				Doc: "Adjusts the width of each terminal cell."},
			{Key: "adjust-cell-height", Label: "Cell Height Adjustment", Kind: KindNumber, Default: Number(1),
				Doc: "Adjusts the height of each terminal cell."},
		}},
		{Name: "Colors", Fields: []Field{
			{Key: "theme", Label: "Theme", Kind: KindText, Default: String(""),
				Doc: "Name of a built-in theme, e.g. nord, dracula, catppuccin-mocha."},
			{Key: "background", Label: "Background Color", Kind: KindColor, Default: String("#000000")},
			{Key: "foreground", Label: "Foreground Color", Kind: KindColor, Default: String("#ffffff")},
			{Key: "background-opacity", Label: "Background Opacity", Kind: KindNumber, Default: Number(1),
				Doc: "Opacity of the window background (0.0 - 1.0)."},
			{Key: "selection-background", Label: "Selection Background", Kind: KindColor, Default: String("")},
			{Key: "selection-foreground", Label: "Selection Foreground", Kind: KindColor, Default: String("")},
			{Key: "palette", Label: "Color Palette", Kind: KindRepeatable, Default: List{},
				Doc: "ANSI/256 palette entries, one per line, e.g. 0=#1d1f21."},
			{Key: "background-image", Label: "Background Image", Kind: KindFile, Default: String(""),
				Doc: "Path to an image drawn behind the terminal."},
			{Key: "background-image-opacity", Label: "Background Image Opacity", Kind: KindNumber, Default: Number(1)},
		}},
	}},
	Group{Name: "Behavior", Sections: []Section{
		{Name: "Cursor", Fields: []Field{
			{Key: "cursor-style", Label: "Cursor Style", Kind: KindEnum, Default: String("block"),
				Options: []string{"block", "bar", "underline", "block_hollow"}},
			{Key: "cursor-color", Label: "Cursor Color", Kind: KindColor, Default: String("")},
			{Key: "cursor-style-blink", Label: "Cursor Blink", Kind: KindBoolean, Default: Bool(true)},
		}},
		{Name: "Clipboard", Fields: []Field{
			{Key: "copy-on-select", Label: "Copy on Select", Kind: KindBoolean, Default: Bool(false)},
			{Key: "paste-on-middle-click", Label: "Paste on Middle Click", Kind: KindBoolean, Default: Bool(true)},
		}},
		{Name: "Scrolling", Fields: []Field{
			{Key: "scrollback-limit", Label: "Scrollback Lines", Kind: KindNumber, Default: Number(10000),
				Doc: "Number of lines kept in the scrollback buffer."},
			{Key: "mouse-scroll-multiplier", Label: "Scroll Multiplier", Kind: KindNumber, Default: Number(1)},
		}},
	}},
	Group{Name: "Window", Sections: []Section{
		{Name: "General", Fields: []Field{
			{Key: "window-decoration", Label: "Window Decorations", Kind: KindEnum, Default: String("auto"),
				Options: []string{"auto", "none", "client", "server"}},
			{Key: "window-padding-x", Label: "Horizontal Padding", Kind: KindText, Default: String("2")},
			{Key: "window-padding-y", Label: "Vertical Padding", Kind: KindText, Default: String("2")},
			{Key: "window-theme", Label: "Window Theme", Kind: KindEnum, Default: String("auto"),
				Options: []string{"auto", "system", "light", "dark", "ghostty"}},
		}},
	}},
	Group{Name: "Shell", Sections: []Section{
		{Name: "Startup", Fields: []Field{
			{Key: "command", Label: "Shell", Kind: KindText, Default: String(""),
				Doc: "Shell executable to run, e.g. /bin/zsh."},
			{Key: "working-directory", Label: "Working Directory", Kind: KindFile, Default: String(""),
				Doc: "Initial working directory for new terminals."},
			{Key: "initial-command", Label: "Startup Command", Kind: KindText, Default: String(""),
				Doc: "Command run in the first terminal only."},
		}},
	}},
	Group{Name: "Keybindings", Sections: []Section{
		{Name: "General", Fields: []Field{
			{Key: "keybind", Label: "Keybindings", Kind: KindKeybindingList, Default: String(""),
				Doc: "Custom keyboard shortcut, e.g. ctrl+shift+t=new_tab."},
		}},
	}},
	Group{Name: "Rendering", Sections: []Section{
		{Name: "Performance", Fields: []Field{
			{Key: "window-vsync", Label: "VSync", Kind: KindBoolean, Default: Bool(true)},
		}},
	}},
	Group{Name: "Runtime", Sections: []Section{
		{Name: "Behavior", Fields: []Field{
			{Key: "quit-after-last-window-closed", Label: "Quit After Last Window", Kind: KindBoolean, Default: Bool(false)},
			{Key: "confirm-close-surface", Label: "Confirm Close", Kind: KindBoolean, Default: Bool(true)},
		}},
	}},
)
