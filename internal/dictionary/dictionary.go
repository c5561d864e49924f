// Package dictionary reads and writes candidate lists kept outside the config
// file. Entries are either bare strings or {value, doc} objects.
package dictionary

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
)

// Format is a dictionary file encoding
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatJSON
	FormatMsgpack
	FormatText // one value per line, optional tab-separated doc
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	case FormatText:
		return "text"
	}
	return "unknown"
}

// DetectFormat picks the format from the file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".msgpack", ".mp":
		return FormatMsgpack
	case ".txt":
		return FormatText
	}
	return FormatUnknown
}

// entry accepts either a bare string or a candidate object
type entry completion.Candidate

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Value = node.Value
		return nil
	}
	var c completion.Candidate
	if err := node.Decode(&c); err != nil {
		return err
	}
	*e = entry(c)
	return nil
}

func (e *entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Value)
	}
	var c completion.Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*e = entry(c)
	return nil
}

func (e *entry) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		e.Value = t
	case map[string]interface{}:
		e.Value, _ = t["value"].(string)
		e.Doc, _ = t["doc"].(string)
	default:
		return fmt.Errorf("unexpected dictionary entry of type %T", v)
	}
	return nil
}

// Load reads a dictionary file
func Load(path string) ([]completion.Candidate, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, derrors.NewDictionaryError(path, "unsupported dictionary format", fmt.Errorf("extension %q", filepath.Ext(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewNotFoundError(path, "dictionary not found")
		}
		return nil, derrors.NewDictionaryError(path, "failed to read dictionary", err)
	}

	candidates, err := Decode(data, format)
	if err != nil {
		return nil, derrors.NewDictionaryError(path, "failed to decode dictionary", err)
	}
	return candidates, nil
}

// Decode parses dictionary content in the given format
func Decode(data []byte, format Format) ([]completion.Candidate, error) {
	var entries []entry

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	case FormatText:
		return decodeText(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	candidates := make([]completion.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, completion.Candidate(e))
	}
	return candidates, nil
}

func decodeText(data []byte) ([]completion.Candidate, error) {
	var candidates []completion.Candidate
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		value, doc, _ := strings.Cut(line, "\t")
		candidates = append(candidates, completion.Candidate{
			Value: strings.TrimSpace(value),
			Doc:   strings.TrimSpace(doc),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// Encode serializes candidates in msgpack format
func Encode(candidates []completion.Candidate) ([]byte, error) {
	return msgpack.Marshal(candidates)
}

// Pack writes candidates to path in msgpack format
func Pack(candidates []completion.Candidate, path string) error {
	data, err := Encode(candidates)
	if err != nil {
		return derrors.NewDictionaryError(path, "failed to encode dictionary", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return derrors.NewDictionaryError(path, "failed to write dictionary", err)
	}
	return nil
}
