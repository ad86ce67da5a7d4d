// Package segmenter turns an uploaded document into ordered translation
// units. It has no side effects: input is an in-memory buffer, output is a
// slice in encounter order.
//
// Two formats are understood:
//
//   - ".json": a flat object; every key becomes a unit whose translation is
//     the key's value.
//   - ".txt": free text; every non-blank line is split into sentence-like
//     chunks and every chunk becomes a unit with an empty translation.
package segmenter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/tidwall/gjson"
)

const (
	ExtJSON = ".json"
	ExtText = ".txt"
)

// Unit is one source string paired with its (possibly empty) translation.
type Unit struct {
	Source      string
	Translation string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// chunk is a run of non-terminators, any terminators after it and trailing
// whitespace.
var chunk = regexp.MustCompile(`[^.!?]+[.!?]*\s*`)

// Ext returns the lower-cased extension of filename, including the dot.
// Dot-files such as ".json" have no extension.
func Ext(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(ext)
}

// Segment splits data according to ext (as returned by Ext).
// Errors wrap common.ErrorUnsupportedFormat or common.ErrorParse.
// Text containing NUL cannot be stored and is a parse error.
func Segment(data []byte, ext string) ([]Unit, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))

	var (
		units []Unit
		err   error
	)
	switch ext {
	case ExtJSON:
		units, err = segmentJSON(data)
	case ExtText:
		units = segmentText(string(data))
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrorUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	for i, u := range units {
		if strings.ContainsRune(u.Source, 0) || strings.ContainsRune(u.Translation, 0) {
			return nil, fmt.Errorf("%w: unit %d contains a NUL character", common.ErrorParse, i)
		}
	}
	return units, nil
}

func segmentJSON(data []byte) ([]Unit, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", common.ErrorParse)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top-level value must be an object", common.ErrorParse)
	}

	var (
		units []Unit
		index = map[string]int{}
		err   error
	)

	doc.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() || value.IsArray() {
			err = fmt.Errorf("%w: value of %q is not a string", common.ErrorParse, key.String())
			return false
		}

		source := key.String()
		translation := translationOf(value)

		// a repeated key keeps its first position and its last value
		if i, ok := index[source]; ok {
			units[i].Translation = translation
			return true
		}
		index[source] = len(units)
		units = append(units, Unit{Source: source, Translation: translation})
		return true
	})
	if err != nil {
		return nil, err
	}

	return units, nil
}

// translationOf maps a scalar JSON value to translation text. Falsy values
// (null, false, 0, "") are an empty translation.
func translationOf(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		if v.Num == 0 {
			return ""
		}
		return v.Raw
	case gjson.True:
		return "true"
	default:
		return ""
	}
}

func segmentText(text string) []Unit {
	var units []Unit

	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimSuffix(paragraph, "\r")
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		chunks := chunk.FindAllString(paragraph, -1)
		if len(chunks) == 0 {
			chunks = []string{paragraph}
		}

		for _, c := range chunks {
			if c = strings.TrimSpace(c); c != "" {
				units = append(units, Unit{Source: c})
			}
		}
	}

	return units
}
