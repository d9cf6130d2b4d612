package upload

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Envelope layout:
//
//	#metadata
//	#<base64 of the JSON metadata object, one line per LineWidth characters>
//	#
//	#body
//	#<base64 of the file bytes, one line per LineWidth characters>
//	#
const (
	metadataHeader = "#metadata\n"
	bodyHeader     = "#body\n"
	sectionEnd     = "#\n"
)

var ErrMalformedEnvelope = errors.New("upload: malformed envelope")

// frameLine returns one envelope line carrying b.
func frameLine(b []byte) string {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(b)) + 2)
	sb.WriteByte('#')
	sb.WriteString(base64.StdEncoding.EncodeToString(b))
	sb.WriteByte('\n')
	return sb.String()
}

// metadataSection renders the metadata part of the envelope, up to and
// including the body header, as a list of chunks.
func metadataSection(metadata map[string]string, lineWidth int) ([]string, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	chunks := []string{metadataHeader}
	perLine := lineWidth / 4 * 3
	for len(raw) > 0 {
		n := min(perLine, len(raw))
		chunks = append(chunks, frameLine(raw[:n]))
		raw = raw[n:]
	}
	return append(chunks, sectionEnd, bodyHeader), nil
}

// Decode reads a complete envelope from r and returns its metadata and body.
func Decode(r io.Reader) (map[string]string, []byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	rawMeta, err := readSection(sc, "#metadata")
	if err != nil {
		return nil, nil, err
	}
	body, err := readSection(sc, "#body")
	if err != nil {
		return nil, nil, err
	}

	metadata := map[string]string{}
	if err := json.Unmarshal(rawMeta, &metadata); err != nil {
		return nil, nil, fmt.Errorf("%w: metadata: %v", ErrMalformedEnvelope, err)
	}
	return metadata, body, nil
}

func readSection(sc *bufio.Scanner, header string) ([]byte, error) {
	if !sc.Scan() {
		return nil, scanErr(sc, "missing "+header)
	}
	if sc.Text() != header {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrMalformedEnvelope, header, sc.Text())
	}

	var out []byte
	for sc.Scan() {
		line := sc.Text()
		if line == "#" {
			return out, nil
		}
		data, ok := strings.CutPrefix(line, "#")
		if !ok {
			return nil, fmt.Errorf("%w: line without '#' prefix", ErrMalformedEnvelope)
		}
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEnvelope, header, err)
		}
		out = append(out, b...)
	}
	return nil, scanErr(sc, "unterminated "+header)
}

func scanErr(sc *bufio.Scanner, msg string) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}
	return fmt.Errorf("%w: %s", ErrMalformedEnvelope, msg)
}
