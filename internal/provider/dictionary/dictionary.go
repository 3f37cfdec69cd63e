// Package dictionary offers words from static word lists.
//
// Dictionaries load from three formats, chosen by file extension:
//
//   - .msgpack / .mpk: a msgpack-encoded Dictionary
//   - .yaml / .yml: a YAML Dictionary
//   - anything else: plain text, one "word [rank] [detail...]" per line,
//     '#' starting a comment
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// ErrEmptyWord is returned for an entry without a word.
var ErrEmptyWord = errors.New("dictionary: entry without word")

// Entry is one dictionary word.
type Entry struct {
	Word string `msgpack:"word" yaml:"word"`
	// Rank orders entries; lower is more common. Zero means unranked.
	Rank   int    `msgpack:"rank,omitempty" yaml:"rank,omitempty"`
	Detail string `msgpack:"detail,omitempty" yaml:"detail,omitempty"`
	// Kind names a completion.Kind such as "function" or "keyword".
	Kind string `msgpack:"kind,omitempty" yaml:"kind,omitempty"`
	// Insert replaces Word as the inserted text when set.
	Insert string `msgpack:"insert,omitempty" yaml:"insert,omitempty"`
}

// Dictionary is a named word list. The name doubles as the filter category
// of its items.
type Dictionary struct {
	Name    string  `msgpack:"name" yaml:"name"`
	Entries []Entry `msgpack:"entries" yaml:"entries"`
}

// Validate reports entries without a word.
func (d *Dictionary) Validate() error {
	for i, e := range d.Entries {
		if strings.TrimSpace(e.Word) == "" {
			return fmt.Errorf("%w: %s entry %d", ErrEmptyWord, d.Name, i)
		}
	}
	return nil
}

// LoadFile reads a dictionary, picking the format from the extension. A
// dictionary without a name is named after the file.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	var d *Dictionary
	switch ext {
	case ".msgpack", ".mpk":
		d, err = ReadMsgpack(f)
	case ".yaml", ".yml":
		d, err = ReadYAML(f)
	default:
		d, err = ReadText(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadMsgpack decodes a msgpack dictionary.
func ReadMsgpack(r io.Reader) (*Dictionary, error) {
	var d Dictionary
	if err := msgpack.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteMsgpack encodes d as msgpack.
func WriteMsgpack(w io.Writer, d *Dictionary) error {
	return msgpack.NewEncoder(w).Encode(d)
}

// ReadYAML decodes a YAML dictionary.
func ReadYAML(r io.Reader) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return &d, nil
		}
		return nil, err
	}
	return &d, nil
}

// ReadText parses the plain text format.
func ReadText(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		fields := strings.Fields(s)
		e := Entry{Word: fields[0]}
		if len(fields) > 1 {
			rank, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid rank %q", line, fields[1])
			}
			e.Rank = rank
		}
		if len(fields) > 2 {
			e.Detail = strings.Join(fields[2:], " ")
		}
		d.Entries = append(d.Entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}
