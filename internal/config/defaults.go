package config

import "time"

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Categories: Categories{
			Image: []string{
				".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp",
			},
			Text: []string{
				// Documents and data
				".txt", ".md", ".markdown", ".rst", ".csv", ".tsv",
				".json", ".jsonl", ".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf",
				".xml", ".properties", ".env", ".log", ".srt", ".vtt", ".svg",
				// Web and source
				".html", ".htm", ".css", ".scss", ".js", ".mjs", ".ts", ".tsx", ".jsx",
				".py", ".go", ".rs", ".java", ".c", ".h", ".cpp", ".hpp", ".cs",
				".sh", ".bat", ".ps1", ".sql",
				// Dotfiles report their whole name as the extension
				".gitignore", ".gitattributes", ".editorconfig", ".npmrc",
				// Unity serialized assets
				".unity", ".prefab", ".meta", ".asset", ".mat", ".anim", ".controller",
			},
			TextNames: []string{
				"makefile", "dockerfile", "license", "readme", "procfile", "gemfile", "vagrantfile",
			},
			Audio: []string{
				".mp3", ".wav", ".flac", ".ogg", ".oga", ".m4a", ".aac", ".opus", ".wma", ".aiff",
			},
			Video: []string{
				".mp4", ".m4v", ".mkv", ".mov", ".avi", ".webm", ".wmv", ".flv", ".mpg", ".mpeg",
			},
		},
		Signatures: map[string]Signature{
			// Zip containers
			".zip":  {HeaderLength: 4, Prefixes: []string{"504b0304"}},
			".docx": {HeaderLength: 4, Prefixes: []string{"504b0304"}},
			".xlsx": {HeaderLength: 4, Prefixes: []string{"504b0304"}},
			".pptx": {HeaderLength: 4, Prefixes: []string{"504b0304"}},
			".jar":  {HeaderLength: 4, Prefixes: []string{"504b0304"}},
			".apk":  {HeaderLength: 4, Prefixes: []string{"504b0304"}},
			".epub": {HeaderLength: 4, Prefixes: []string{"504b0304"}},

			// Adobe: illustrator files are either PDF- or PostScript-based
			".pdf": {HeaderLength: 5, Prefixes: []string{"255044462d"}},
			".ai":  {HeaderLength: 10, Prefixes: []string{"255044462d", "252150532d41646f6265"}},
			".eps": {HeaderLength: 10, Prefixes: []string{"252150532d41646f6265", "c5d0d3c6"}},
			".psd": {HeaderLength: 4, Prefixes: []string{"38425053"}},

			// Archives
			".gz":           {HeaderLength: 2, Prefixes: []string{"1f8b"}},
			".tgz":          {HeaderLength: 2, Prefixes: []string{"1f8b"}},
			".unitypackage": {HeaderLength: 2, Prefixes: []string{"1f8b"}},
			".7z":           {HeaderLength: 6, Prefixes: []string{"377abcaf271c"}},
			".rar":          {HeaderLength: 7, Prefixes: []string{"526172211a0700", "526172211a0701"}},

			// Executables and databases
			".exe":     {HeaderLength: 2, Prefixes: []string{"4d5a"}},
			".dll":     {HeaderLength: 2, Prefixes: []string{"4d5a"}},
			".wasm":    {HeaderLength: 4, Prefixes: []string{"0061736d"}},
			".sqlite":  {HeaderLength: 16, Prefixes: []string{"53514c69746520666f726d6174203300"}},
			".sqlite3": {HeaderLength: 16, Prefixes: []string{"53514c69746520666f726d6174203300"}},

			// Fonts and icons
			".ttf":   {HeaderLength: 4, Prefixes: []string{"00010000", "74727565"}},
			".otf":   {HeaderLength: 4, Prefixes: []string{"4f54544f"}},
			".woff":  {HeaderLength: 4, Prefixes: []string{"774f4646"}},
			".woff2": {HeaderLength: 4, Prefixes: []string{"774f4632"}},
			".ico":   {HeaderLength: 4, Prefixes: []string{"00000100"}},

			".blend":    {HeaderLength: 7, Prefixes: []string{"424c454e444552"}},
			".ds_store": {HeaderLength: 8, Prefixes: []string{"0000000142756431"}},
		},
		Probe: ProbeConfig{
			FFProbePath:      "ffprobe",
			ProbeTimeout:     30 * time.Second,
			ImageTimeout:     10 * time.Second,
			AudioMinDuration: 1.0, // short audio probes are noisy
			VideoMinDuration: 0.5,
			MaxImagePixels:   200_000_000,
			MaxDecodeSize:    "512MB",
		},
		Workers: 0,
		ExcludePatterns: []string{
			".git",
			"node_modules",
		},
		DryRun:   false,
		LogLevel: "info",
	}
}
