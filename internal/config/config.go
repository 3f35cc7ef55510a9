package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Keymap map[string]string

type EditorOptions struct {
	DefaultFontSize int    `toml:"default-font-size"`
	MinFontSize     int    `toml:"min-font-size"`
	MaxFontSize     int    `toml:"max-font-size"`
	FontSizeStep    int    `toml:"font-size-step"`
	TextColor       string `toml:"text-color"`
	BackgroundColor string `toml:"background-color"`
	TabWidth        int    `toml:"tab-width"`
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	HeadingForeground    string `toml:"heading-foreground"`
	MessageForeground    string `toml:"message-foreground"`
	ErrorForeground      string `toml:"error-foreground"`
}

type ExportOptions struct {
	OutputDir      string   `toml:"output-dir"`
	DefaultName    string   `toml:"default-name"`
	DevanagariName string   `toml:"devanagari-name"`
	FontName       string   `toml:"font-name"`
	FontPaths      []string `toml:"font-paths"`
	FontCacheDir   string   `toml:"font-cache-dir"`
	DefaultAlign   string   `toml:"default-align"`
	PreviewWidth   int      `toml:"preview-width"`
}

type OCROptions struct {
	Backend        string   `toml:"backend"`
	Endpoint       string   `toml:"endpoint"`
	APIKeyEnv      string   `toml:"api-key-env"`
	Languages      []string `toml:"languages"`
	TimeoutSeconds int      `toml:"timeout-seconds"`
}

// Timeout returns the request timeout.
func (o OCROptions) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// APIKey reads the key from the configured environment variable.
func (o OCROptions) APIKey() string {
	return os.Getenv(o.APIKeyEnv)
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Export ExportOptions `toml:"export"`
	OCR    OCROptions    `toml:"ocr"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			DefaultFontSize: 16,
			MinFontSize:     12,
			MaxFontSize:     32,
			FontSizeStep:    2,
			TextColor:       "#0000FF",
			BackgroundColor: "#ADD8E6",
			TabWidth:        4,
		},
		Theme: Theme{
			Theme:                "",
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			SelectionForeground:  "#B3B1AD",
			SelectionBackground:  "#27425A",
			HeadingForeground:    "#FFD173",
			MessageForeground:    "#BAE67E",
			ErrorForeground:      "#FF3333",
		},
		Export: ExportOptions{
			OutputDir:      "~/Download/Scanner",
			DefaultName:    "document.pdf",
			DevanagariName: "hindi_document.pdf",
			FontName:       "Mangal.ttf",
			FontPaths:      []string{"."},
			FontCacheDir:   "",
			DefaultAlign:   "justify",
			PreviewWidth:   800,
		},
		OCR: OCROptions{
			Backend:        "vision",
			Endpoint:       "https://vision.googleapis.com/v1/images:annotate",
			APIKeyEnv:      "GOOGLE_VISION_API_KEY",
			Languages:      []string{"eng", "hin"},
			TimeoutSeconds: 30,
		},
		Keymap: Keymap{
			"left":        "move_left",
			"right":       "move_right",
			"up":          "move_up",
			"down":        "move_down",
			"home":        "line_start",
			"end":         "line_end",
			"ctrl+home":   "file_start",
			"ctrl+end":    "file_end",
			"pgup":        "page_up",
			"pgdn":        "page_down",
			"shift+left":  "select_left",
			"shift+right": "select_right",
			"shift+up":    "select_up",
			"shift+down":  "select_down",
			"shift+home":  "select_line_start",
			"shift+end":   "select_line_end",
			"ctrl+a":      "select_all",
			"esc":         "collapse_selection",
			"backspace":   "backspace",
			"del":         "delete_char",
			"enter":       "newline",
			"tab":         "tab",

			"ctrl+b": "toggle_bold",
			"alt+i":  "toggle_italic",
			"ctrl+u": "toggle_underline",
			"alt+1":  "heading_1",
			"alt+2":  "heading_2",
			"alt+3":  "heading_3",
			"alt+0":  "heading_none",
			"alt+l":  "align_left",
			"alt+c":  "align_center",
			"alt+r":  "align_right",
			"alt+j":  "align_justify",
			"alt+=":  "font_bigger",
			"alt+-":  "font_smaller",
			"alt+t":  "toggle_text_color",
			"alt+g":  "toggle_background",

			"ctrl+e": "export",
			"ctrl+d": "export_devanagari",
			"ctrl+p": "preview",
			"ctrl+k": "copy_markup",
			"ctrl+c": "copy",
			"ctrl+v": "paste",
			"ctrl+q": "quit",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	mergeEditor(&cfg.Editor, userCfg.Editor)
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	mergeExport(&cfg.Export, userCfg.Export)
	mergeOCR(&cfg.OCR, userCfg.OCR)
	for k, v := range userCfg.Keymap {
		cfg.Keymap[k] = v
	}

	return cfg, nil
}

func mergeEditor(dst *EditorOptions, src EditorOptions) {
	if src.DefaultFontSize > 0 {
		dst.DefaultFontSize = src.DefaultFontSize
	}
	if src.MinFontSize > 0 {
		dst.MinFontSize = src.MinFontSize
	}
	if src.MaxFontSize > 0 {
		dst.MaxFontSize = src.MaxFontSize
	}
	if src.FontSizeStep > 0 {
		dst.FontSizeStep = src.FontSizeStep
	}
	if src.TextColor != "" {
		dst.TextColor = src.TextColor
	}
	if src.BackgroundColor != "" {
		dst.BackgroundColor = src.BackgroundColor
	}
	if src.TabWidth > 0 {
		dst.TabWidth = src.TabWidth
	}
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.HeadingForeground != "" {
		dst.HeadingForeground = src.HeadingForeground
	}
	if src.MessageForeground != "" {
		dst.MessageForeground = src.MessageForeground
	}
	if src.ErrorForeground != "" {
		dst.ErrorForeground = src.ErrorForeground
	}
}

func mergeExport(dst *ExportOptions, src ExportOptions) {
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.DefaultName != "" {
		dst.DefaultName = src.DefaultName
	}
	if src.DevanagariName != "" {
		dst.DevanagariName = src.DevanagariName
	}
	if src.FontName != "" {
		dst.FontName = src.FontName
	}
	if len(src.FontPaths) > 0 {
		dst.FontPaths = src.FontPaths
	}
	if src.FontCacheDir != "" {
		dst.FontCacheDir = src.FontCacheDir
	}
	if src.DefaultAlign != "" {
		dst.DefaultAlign = src.DefaultAlign
	}
	if src.PreviewWidth > 0 {
		dst.PreviewWidth = src.PreviewWidth
	}
}

func mergeOCR(dst *OCROptions, src OCROptions) {
	if src.Backend != "" {
		dst.Backend = src.Backend
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.APIKeyEnv != "" {
		dst.APIKeyEnv = src.APIKeyEnv
	}
	if len(src.Languages) > 0 {
		dst.Languages = src.Languages
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QSCAN_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qscan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qscan"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir is where staged font assets live.
func CacheDir() (string, error) {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return filepath.Join(v, "qscan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "qscan"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// FontCache resolves the font cache directory, defaulting under CacheDir.
func (e ExportOptions) FontCache() (string, error) {
	if e.FontCacheDir != "" {
		return ExpandHome(e.FontCacheDir), nil
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "fonts"), nil
}
