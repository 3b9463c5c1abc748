package language

import (
	"sort"
	"strings"
)

// Language represents a programming (or natural) language the endpoint can
// translate between. Name is what gets sent on the wire.
type Language struct {
	Code string
	Name string
}

const (
	DefaultSource = "JavaScript"
	DefaultTarget = "Python"
)

// Languages is a map of supported languages code -> Language.
var Languages = map[string]Language{
	"asm":          {Code: "asm", Name: "Assembly Language"},
	"bash":         {Code: "bash", Name: "Bash"},
	"c":            {Code: "c", Name: "C"},
	"clojure":      {Code: "clojure", Name: "Clojure"},
	"cobol":        {Code: "cobol", Name: "COBOL"},
	"coffeescript": {Code: "coffeescript", Name: "CoffeeScript"},
	"cpp":          {Code: "cpp", Name: "C++"},
	"csharp":       {Code: "csharp", Name: "C#"},
	"css":          {Code: "css", Name: "CSS"},
	"dart":         {Code: "dart", Name: "Dart"},
	"elixir":       {Code: "elixir", Name: "Elixir"},
	"fortran":      {Code: "fortran", Name: "Fortran"},
	"go":           {Code: "go", Name: "Go"},
	"groovy":       {Code: "groovy", Name: "Groovy"},
	"haskell":      {Code: "haskell", Name: "Haskell"},
	"html":         {Code: "html", Name: "HTML"},
	"java":         {Code: "java", Name: "Java"},
	"javascript":   {Code: "javascript", Name: "JavaScript"},
	"jsx":          {Code: "jsx", Name: "JSX"},
	"julia":        {Code: "julia", Name: "Julia"},
	"kotlin":       {Code: "kotlin", Name: "Kotlin"},
	"lisp":         {Code: "lisp", Name: "Lisp"},
	"lua":          {Code: "lua", Name: "Lua"},
	"matlab":       {Code: "matlab", Name: "Matlab"},
	"natural":      {Code: "natural", Name: "Natural Language"},
	"nosql":        {Code: "nosql", Name: "NoSQL"},
	"objc":         {Code: "objc", Name: "Objective-C"},
	"pascal":       {Code: "pascal", Name: "Pascal"},
	"perl":         {Code: "perl", Name: "Perl"},
	"php":          {Code: "php", Name: "PHP"},
	"plsql":        {Code: "plsql", Name: "PL/SQL"},
	"powershell":   {Code: "powershell", Name: "Powershell"},
	"python":       {Code: "python", Name: "Python"},
	"r":            {Code: "r", Name: "R"},
	"racket":       {Code: "racket", Name: "Racket"},
	"ruby":         {Code: "ruby", Name: "Ruby"},
	"rust":         {Code: "rust", Name: "Rust"},
	"sas":          {Code: "sas", Name: "SAS"},
	"scala":        {Code: "scala", Name: "Scala"},
	"sql":          {Code: "sql", Name: "SQL"},
	"swift":        {Code: "swift", Name: "Swift"},
	"swiftui":      {Code: "swiftui", Name: "SwiftUI"},
	"tsx":          {Code: "tsx", Name: "TSX"},
	"typescript":   {Code: "typescript", Name: "TypeScript"},
	"vbnet":        {Code: "vbnet", Name: "Visual Basic .NET"},
	"vue":          {Code: "vue", Name: "Vue"},
}

// GetLanguage resolves a code or a display name, ignoring case.
func GetLanguage(input string) (Language, bool) {
	needle := strings.TrimSpace(input)
	if needle == "" {
		return Language{}, false
	}
	if lang, ok := Languages[strings.ToLower(needle)]; ok {
		return lang, true
	}
	for _, lang := range Languages {
		if strings.EqualFold(lang.Name, needle) {
			return lang, true
		}
	}
	return Language{}, false
}

// GetSupportedLanguages returns all languages sorted by Name.
func GetSupportedLanguages() []Language {
	entries := make([]Language, 0, len(Languages))
	for _, v := range Languages {
		entries = append(entries, v)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Step moves delta positions from name in the sorted list, wrapping around.
// Unknown names start from the first entry.
func Step(name string, delta int) string {
	entries := GetSupportedLanguages()
	idx := -1
	for i, e := range entries {
		if e.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entries[0].Name
	}
	n := len(entries)
	return entries[((idx+delta)%n+n)%n].Name
}
