// Package classify maps file names to the validation category that judges
// them. The tables come from configuration; nothing here is format specific.
package classify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/naming"
)

// Category identifies which validator judges a file
type Category int

const (
	Unclassified Category = iota
	Image
	Text
	Audio
	Video
	SignatureBinary
)

// All lists the classified categories in report order
var All = []Category{Image, Text, Audio, Video, SignatureBinary}

// String returns the category name used in reports and logs
func (c Category) String() string {
	switch c {
	case Image:
		return "image"
	case Text:
		return "text"
	case Audio:
		return "audio"
	case Video:
		return "video"
	case SignatureBinary:
		return "signature"
	default:
		return "unclassified"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON and YAML reports
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// GroupSensitive reports whether files of this category must be compared
// against their siblings before a survivor can be chosen. Only text has a
// ranking signal; every other check is authoritative per file.
func GroupSensitive(c Category) bool {
	return c == Text
}

// Signature is a decoded magic-byte declaration
type Signature struct {
	Key          string
	HeaderLength int
	Prefixes     [][]byte
}

// Match reports whether head starts with any accepted prefix
func (s Signature) Match(head []byte) bool {
	for _, p := range s.Prefixes {
		if bytes.HasPrefix(head, p) {
			return true
		}
	}
	return false
}

// Classifier resolves extensions and names against the configured tables
type Classifier struct {
	byExt      map[string]Category
	textNames  map[string]bool
	signatures map[string]Signature
	disabled   map[Category]bool
}

// New builds a Classifier from the configuration tables
func New(cfg *config.Config) (*Classifier, error) {
	c := &Classifier{
		byExt:      make(map[string]Category),
		textNames:  make(map[string]bool),
		signatures: make(map[string]Signature),
		disabled:   make(map[Category]bool),
	}

	add := func(cat Category, keys []string) error {
		for _, k := range keys {
			k = strings.ToLower(k)
			if prev, ok := c.byExt[k]; ok && prev != cat {
				return fmt.Errorf("extension %q claimed by %s and %s", k, prev, cat)
			}
			c.byExt[k] = cat
		}
		return nil
	}

	if err := add(Image, cfg.Categories.Image); err != nil {
		return nil, err
	}
	if err := add(Text, cfg.Categories.Text); err != nil {
		return nil, err
	}
	if err := add(Audio, cfg.Categories.Audio); err != nil {
		return nil, err
	}
	if err := add(Video, cfg.Categories.Video); err != nil {
		return nil, err
	}

	for _, name := range cfg.Categories.TextNames {
		c.textNames[strings.ToLower(name)] = true
	}

	for key, sig := range cfg.Signatures {
		prefixes, err := sig.Decode()
		if err != nil {
			return nil, fmt.Errorf("signature %s: %w", key, err)
		}
		key = strings.ToLower(key)
		if prev, ok := c.byExt[key]; ok {
			return nil, fmt.Errorf("signature %q overlaps %s extension", key, prev)
		}
		c.signatures[key] = Signature{Key: key, HeaderLength: sig.HeaderLength, Prefixes: prefixes}
	}

	return c, nil
}

// Disable makes every file of cat classify as Unclassified. Used when the
// capability behind a validator is unavailable.
func (c *Classifier) Disable(cat Category) {
	c.disabled[cat] = true
}

// Disabled reports whether cat has been disabled
func (c *Classifier) Disabled(cat Category) bool {
	return c.disabled[cat]
}

// Classify maps a lowercase extension and lowercase full name to a category
func (c *Classifier) Classify(ext, lowerName string) Category {
	return c.filter(c.lookup(ext, lowerName))
}

// ClassifyName classifies a file name as found on disk
func (c *Classifier) ClassifyName(name string) Category {
	return c.Classify(naming.Ext(name), strings.ToLower(name))
}

// Signature returns the declared header for a signature-checked file
func (c *Classifier) Signature(ext, lowerName string) (Signature, bool) {
	for _, key := range candidates(ext, lowerName) {
		if sig, ok := c.signatures[key]; ok {
			return sig, true
		}
	}
	return Signature{}, false
}

func (c *Classifier) lookup(ext, lowerName string) Category {
	if ext != "" {
		if cat, ok := c.byExt[ext]; ok {
			return cat
		}
		if _, ok := c.signatures[ext]; ok {
			return SignatureBinary
		}
	}

	// Names without a conventional extension, tried as found and in their
	// canonical form so "Makefile" and "_3.env" both resolve
	for _, key := range candidates("", lowerName) {
		if c.textNames[key] {
			return Text
		}
		if cat, ok := c.byExt[key]; ok {
			return cat
		}
		if _, ok := c.signatures[key]; ok {
			return SignatureBinary
		}
	}

	return Unclassified
}

func (c *Classifier) filter(cat Category) Category {
	if c.Disabled(cat) {
		return Unclassified
	}
	return cat
}

func candidates(ext, lowerName string) []string {
	keys := make([]string, 0, 3)
	if ext != "" {
		keys = append(keys, ext)
	}
	if lowerName != "" {
		keys = append(keys, lowerName)
		if base := strings.ToLower(naming.BaseName(lowerName)); base != lowerName {
			keys = append(keys, base)
		}
	}
	return keys
}
