// Package language maps source languages to their comment styles.
package language

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lexandro/copyrighter/header"
)

// Language identifies a source language with a known comment style.
type Language int

const (
	Unknown Language = iota
	Java
	XML
	Clojure
)

// ErrUnsupported is returned when a language has no comment style.
var ErrUnsupported = errors.New("unsupported language")

func (l Language) String() string {
	switch l {
	case Java:
		return "java"
	case XML:
		return "xml"
	case Clojure:
		return "clojure"
	}
	return "unknown"
}

// Style returns the comment style used for headers in lang.
func Style(lang Language) (header.Style, error) {
	switch lang {
	case Java:
		return header.BlockStyle(" *", "/*", " */"), nil
	case XML:
		return header.BlockStyle("    ", "<!--", "-->"), nil
	case Clojure:
		return header.SimpleStyle(";;"), nil
	}
	return header.Style{}, fmt.Errorf("%w: %s", ErrUnsupported, lang)
}

// Parse returns the language with the given name (case-insensitive).
func Parse(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "java":
		return Java, nil
	case "xml":
		return XML, nil
	case "clojure", "clj":
		return Clojure, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// ExtensionToLanguage maps file extensions (without dot) to languages.
var ExtensionToLanguage = map[string]Language{
	"java": Java,
	"xml":  XML, "xsd": XML, "xsl": XML, "xslt": XML,
	"clj": Clojure, "cljs": Clojure, "cljc": Clojure, "edn": Clojure,
}

// Detect returns the language for a file path based on its extension.
// Returns Unknown if the extension is not recognized.
func Detect(filePath string) Language {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if ext == "" {
		return Unknown
	}
	if lang, ok := ExtensionToLanguage[ext]; ok {
		return lang
	}
	return Unknown
}
