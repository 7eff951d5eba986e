package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// Format selects the encoding used by Write.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat returns the Format called s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown output format %q", s)
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dump: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCBOR encodes v in canonical CBOR, so equal values always encode
// to equal bytes.
func MarshalCBOR(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// UnmarshalCBOR decodes CBOR data into v.
func UnmarshalCBOR(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "dump: unmarshal")
	}
	return nil
}

// Write encodes s to w in format f.
func Write(w io.Writer, f Format, s *Summary) error {
	switch f {
	case FormatText:
		return writeText(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(s), "dump: json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return errors.Wrap(err, "dump: yaml")
		}
		return errors.Wrap(enc.Close(), "dump: yaml")
	case FormatCBOR:
		data, err := MarshalCBOR(s)
		if err != nil {
			return errors.Wrap(err, "dump: cbor")
		}
		_, err = w.Write(data)
		return err
	}
	return errors.Errorf("unknown output format %q", f)
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func writeText(w io.Writer, s *Summary) error {
	var sb strings.Builder
	kind := "class"
	for _, f := range s.Flags {
		if f == "interface" {
			kind = "interface"
		}
	}
	fmt.Fprintf(&sb, "%s %s", kind, s.Name)
	if s.Super != "" {
		fmt.Fprintf(&sb, " extends %s", s.Super)
	}
	if len(s.Interfaces) > 0 {
		fmt.Fprintf(&sb, " implements %s", strings.Join(s.Interfaces, ", "))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "  version: %s\n", s.Version())
	fmt.Fprintf(&sb, "  flags: %s\n", strings.Join(s.Flags, " "))
	if s.SourceFile != "" {
		fmt.Fprintf(&sb, "  source: %s\n", s.SourceFile)
	}
	if s.Signature != "" {
		fmt.Fprintf(&sb, "  signature: %s\n", s.Signature)
	}
	fmt.Fprintf(&sb, "  constant pool: %s entries\n", humanize.Comma(int64(s.ConstantPool)))

	fmt.Fprintf(&sb, "  fields (%d):\n", len(s.Fields))
	for _, f := range s.Fields {
		fmt.Fprintf(&sb, "    %s\n", joinNonEmpty(strings.Join(f.Flags, " "), f.Type, f.Name))
	}

	fmt.Fprintf(&sb, "  methods (%d):\n", len(s.Methods))
	for _, m := range s.Methods {
		fmt.Fprintf(&sb, "    %s\n", joinNonEmpty(strings.Join(m.Flags, " "), m.Name+m.Descriptor))
		if c := m.Code; c != nil {
			fmt.Fprintf(&sb, "      code: %s, %s instructions, stack=%d, locals=%d",
				humanize.Bytes(uint64(c.Length)), humanize.Comma(int64(c.Instructions)), c.MaxStack, c.MaxLocals)
			if c.Handlers > 0 {
				fmt.Fprintf(&sb, ", %d handlers", c.Handlers)
			}
			sb.WriteString("\n")
		}
	}

	if len(s.Attributes) > 0 {
		fmt.Fprintf(&sb, "  attributes: %s\n", strings.Join(s.Attributes, ", "))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
