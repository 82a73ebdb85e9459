package snapshot

import "strings"

// allowedSections are the configuration namespaces an import may touch.
// Settings outside these sections could belong to extensions not installed on
// this machine, or to arbitrary payloads; they are skipped on apply. The list
// is carried over verbatim from earlier releases.
var allowedSections = []string{
	"workbench", "editor", "files", "search", "terminal", "git",
	"typescript", "javascript", "html", "css", "scss", "less",
	"json", "markdown", "python", "java", "csharp", "cpp", "go",
	"rust", "php", "ruby", "swift", "kotlin", "dart", "powershell",
	"shell", "docker", "yaml", "xml", "sql", "graphql", "vue",
	"react", "angular", "svelte", "solid", "prettier", "eslint",
	"bracketPairColorizer", "indentRainbow", "colorHighlight",
	"todoHighlight", "bookmarks", "pathIntellisense", "autoRenameTag",
	"bracketPairColorizer2", "colorize", "highlight",
	"trailingSpaces", "whitespace", "trimTrailingWhitespace",
}

// SettingAllowed reports whether a dotted settings key belongs to a
// recognized configuration section.
func SettingAllowed(key string) bool {
	for _, section := range allowedSections {
		if strings.HasPrefix(key, section+".") {
			return true
		}
	}
	return false
}
